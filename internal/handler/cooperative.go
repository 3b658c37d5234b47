package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kazicoop/coop-service/internal/service"
)

// CreateCooperative handles cooperative creation
func (h *Handler) CreateCooperative(w http.ResponseWriter, r *http.Request) {
	var in service.CreateCooperativeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	coop, err := h.svc.CreateCooperative(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, coop)
}

// ListCooperatives handles listing all cooperatives
func (h *Handler) ListCooperatives(w http.ResponseWriter, r *http.Request) {
	coops, err := h.svc.ListCooperatives()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coops)
}

// GetCooperative handles fetching one cooperative
func (h *Handler) GetCooperative(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}

	coop, err := h.svc.GetCooperative(coopID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coop)
}

// GetSummary handles fetching the derived aggregate values of a cooperative
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}

	summary, err := h.svc.Summary(coopID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// RequestJoin handles a join request from the authenticated user
func (h *Handler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}

	membership, err := h.svc.RequestJoin(r.Context(), coopID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

// ApproveMember handles approving a pending join request
func (h *Handler) ApproveMember(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member id"})
		return
	}

	membership, err := h.svc.ApproveMember(r.Context(), coopID, memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

// DenyMember handles denying a pending join request
func (h *Handler) DenyMember(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member id"})
		return
	}

	if err := h.svc.DenyMember(r.Context(), coopID, memberID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptRules handles the rules-agreement confirmation step
func (h *Handler) AcceptRules(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}

	membership, err := h.svc.AcceptRules(r.Context(), coopID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

// ListMembers handles listing a cooperative's memberships
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	coopID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cooperative id"})
		return
	}

	members, err := h.svc.ListMembers(coopID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}
