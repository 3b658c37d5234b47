package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kazicoop/coop-service/internal/service"
)

// ApplyForLoan handles a loan application
func (h *Handler) ApplyForLoan(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}

	var in service.ApplyForLoanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	loan, err := h.svc.ApplyForLoan(r.Context(), coopID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

// ListLoans handles listing a cooperative's loan book
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}

	loans, err := h.svc.ListLoans(coopID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

// GetLoan handles fetching one loan with its schedule and repayments
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}
	loanID, err := pathID(r, "loanID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid loan id"})
		return
	}

	loan, err := h.svc.GetLoan(coopID, loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// ApproveLoan handles loan approval
func (h *Handler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}
	loanID, err := pathID(r, "loanID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid loan id"})
		return
	}

	loan, err := h.svc.ApproveLoan(r.Context(), coopID, loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// RejectLoan handles loan rejection
func (h *Handler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}
	loanID, err := pathID(r, "loanID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid loan id"})
		return
	}

	loan, err := h.svc.RejectLoan(r.Context(), coopID, loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// RepayInstallment handles paying one installment of an approved loan
func (h *Handler) RepayInstallment(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}
	loanID, err := pathID(r, "loanID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid loan id"})
		return
	}
	installmentID, err := pathID(r, "installmentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid installment id"})
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	loan, err := h.svc.RepayInstallment(r.Context(), coopID, loanID, installmentID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}
