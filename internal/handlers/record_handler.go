package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"intake-backend/internal/cache"
	"intake-backend/internal/models"
	"intake-backend/internal/services"
	"intake-backend/pkg/utils"

	"github.com/gorilla/mux"
)

const recordCacheTTL = 5 * time.Minute

type RecordHandler struct {
	Service *services.RecordService
}

func NewRecordHandler(s *services.RecordService) *RecordHandler {
	return &RecordHandler{Service: s}
}

func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.Service.GetRecord(context.Background(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, cache.RecordsListKey, func(ctx context.Context) (interface{}, error) {
		records, err := h.Service.ListRecords(ctx)
		if records == nil {
			records = []*models.InventoryRecord{}
		}
		return records, err
	})
}

func (h *RecordHandler) ListPendingRecords(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, cache.RecordsPendingKey, func(ctx context.Context) (interface{}, error) {
		records, err := h.Service.ListPendingRecords(ctx)
		if records == nil {
			records = []*models.InventoryRecord{}
		}
		return records, err
	})
}

// ListDisplayRows returns every record with its row-span projection so the
// display table can merge mixed-box group cells.
func (h *RecordHandler) ListDisplayRows(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, cache.RecordsDisplayKey, func(ctx context.Context) (interface{}, error) {
		return h.Service.ListDisplayRows(ctx)
	})
}

// GetStats returns record counts per box type for the dashboard header.
func (h *RecordHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Service.CountByBoxType(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

func (h *RecordHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.ListGroups(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(groups)
}

// cachedList serves a list endpoint through Redis, falling back to the
// service on a miss.
func (h *RecordHandler) cachedList(w http.ResponseWriter, r *http.Request, key string, fetch func(ctx context.Context) (interface{}, error)) {
	ctx := r.Context()

	if data, ok := cache.GetCached(ctx, key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Write(data)
		return
	}

	result, err := fetch(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, _ := json.Marshal(result)
	cache.SetCached(ctx, key, data, recordCacheTTL)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Write(data)
}

func (h *RecordHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateRecord(r.Context(), id, &req); err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cache.InvalidateRecordCaches(r.Context())

	record, err := h.Service.GetRecord(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteRecord(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	cache.InvalidateRecordCaches(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

func (h *RecordHandler) EditGroup(w http.ResponseWriter, r *http.Request) {
	groupKey := mux.Vars(r)["key"]

	var patch models.GroupPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Service.EditGroup(r.Context(), groupKey, &patch)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cache.InvalidateRecordCaches(r.Context())
	utils.JSON(w, cascadeStatus(result), result)
}

func (h *RecordHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupKey := mux.Vars(r)["key"]

	result, err := h.Service.DeleteGroup(r.Context(), groupKey)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cache.InvalidateRecordCaches(r.Context())
	utils.JSON(w, cascadeStatus(result), result)
}

// cascadeStatus maps a fan-out result onto a response code: 200 when every
// member went through, 207 for a partial outcome, 502 when nothing did.
func cascadeStatus(result *services.CascadeResult) int {
	switch {
	case result.AllSucceeded():
		return http.StatusOK
	case result.AllFailed():
		return http.StatusBadGateway
	default:
		return http.StatusMultiStatus
	}
}
