package handler

import (
	"encoding/json"
	"net/http"
)

// PostContribution handles posting a contribution to the ledger
func (h *Handler) PostContribution(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	contribution, err := h.svc.PostContribution(r.Context(), coopID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contribution)
}

// ListContributions handles listing a cooperative's contribution ledger
func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}

	contributions, err := h.svc.ListContributions(coopID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contributions)
}
