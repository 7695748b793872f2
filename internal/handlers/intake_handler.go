package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"intake-backend/internal/cache"
	"intake-backend/internal/intake"
	"intake-backend/internal/middleware"
	"intake-backend/internal/models"
	"intake-backend/internal/services"

	"github.com/gorilla/mux"
)

type IntakeHandler struct {
	Service *services.IntakeService
}

func NewIntakeHandler(s *services.IntakeService) *IntakeHandler {
	return &IntakeHandler{Service: s}
}

// commitBoxResponse carries the session state after a commit and, once the
// last box is in, the records that were written.
type commitBoxResponse struct {
	Session *intake.Session           `json:"session"`
	Records []*models.InventoryRecord `json:"records,omitempty"`
}

func (h *IntakeHandler) WholeBoxIntake(w http.ResponseWriter, r *http.Request) {
	var req models.WholeBoxIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	operator, ok := middleware.GetOperatorNameFromContext(r.Context())
	if !ok {
		http.Error(w, "Operator not found in context", http.StatusUnauthorized)
		return
	}

	records, err := h.Service.IntakeWholeBox(r.Context(), &req, operator)
	if err != nil {
		if errors.Is(err, intake.ErrNoLineItems) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cache.InvalidateRecordCaches(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(records)
}

func (h *IntakeHandler) StartMixedSession(w http.ResponseWriter, r *http.Request) {
	var req models.StartMixedIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	operator, ok := middleware.GetOperatorNameFromContext(r.Context())
	if !ok {
		http.Error(w, "Operator not found in context", http.StatusUnauthorized)
		return
	}

	session, err := h.Service.StartMixedSession(&req, operator)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

func (h *IntakeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.Service.GetSession(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func (h *IntakeHandler) CommitBox(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.CommitBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, records, err := h.Service.CommitBox(r.Context(), id, req.LinesText)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, intake.ErrEmptyBox):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, intake.ErrSessionNotActive):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if records != nil {
		cache.InvalidateRecordCaches(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(commitBoxResponse{Session: session, Records: records})
}

func (h *IntakeHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.CancelSession(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
}
