package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"intake-backend/internal/archive"
	"intake-backend/internal/services"

	"github.com/gorilla/mux"
)

type PrintHandler struct {
	Records  *services.RecordService
	Printer  *services.PrinterService
	Labels   *services.LabelService
	Uploader *archive.Uploader
}

func NewPrintHandler(records *services.RecordService, printer *services.PrinterService, labels *services.LabelService, uploader *archive.Uploader) *PrintHandler {
	return &PrintHandler{
		Records:  records,
		Printer:  printer,
		Labels:   labels,
		Uploader: uploader,
	}
}

type printRequest struct {
	Copies int `json:"copies"`
}

// PrintRecordLabel sends one record's label to the label printer.
func (h *PrintHandler) PrintRecordLabel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req printRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Copies < 1 {
		req.Copies = 1
	}

	payload, err := h.Records.BuildRecordPrintPayload(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := h.Printer.PrintLabel(payload, req.Copies); err != nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Printed successfully",
	})
}

// PrintGroupLabel prints a single consolidated label for a mixed-box group.
func (h *PrintHandler) PrintGroupLabel(w http.ResponseWriter, r *http.Request) {
	groupKey := mux.Vars(r)["key"]

	var req printRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Copies < 1 {
		req.Copies = 1
	}

	payload, err := h.Records.BuildGroupPrintPayload(r.Context(), groupKey)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.Printer.PrintLabel(payload, req.Copies); err != nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Printed successfully",
	})
}

// DownloadRecordLabel streams the record's label as a PDF and keeps a copy
// in the archive bucket when one is configured.
func (h *PrintHandler) DownloadRecordLabel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	payload, err := h.Records.BuildRecordPrintPayload(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	pdf, err := h.Labels.GenerateLabelPDF(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.Uploader.StoreLabel(r.Context(), payload.Barcode, pdf); err != nil {
		log.Printf("[Print] Label archive upload failed: %v", err)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=label-%s.pdf", id))
	w.Write(pdf)
}

// DownloadGroupLabel streams one consolidated PDF label for a mixed-box group.
func (h *PrintHandler) DownloadGroupLabel(w http.ResponseWriter, r *http.Request) {
	groupKey := mux.Vars(r)["key"]

	payload, err := h.Records.BuildGroupPrintPayload(r.Context(), groupKey)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	pdf, err := h.Labels.GenerateLabelPDF(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.Uploader.StoreLabel(r.Context(), payload.Barcode, pdf); err != nil {
		log.Printf("[Print] Label archive upload failed: %v", err)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=group-%s.pdf", groupKey))
	w.Write(pdf)
}

// IntakeSummary streams the current display projection as a PDF table.
func (h *PrintHandler) IntakeSummary(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.Labels.GenerateIntakeSummaryPDF(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=intake-summary.pdf")
	w.Write(pdf)
}
