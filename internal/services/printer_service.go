package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"intake-backend/internal/models"
)

const (
	DefaultPrinterURL = "http://192.168.15.101:5000"
)

type PrinterService struct {
	client  *http.Client
	baseURL string
}

type PrintFullRequest struct {
	Line1  string `json:"line1"`
	Line2  string `json:"line2"`
	Line3  string `json:"line3,omitempty"`
	Font1  string `json:"font1"`
	Font2  string `json:"font2"`
	Copies int    `json:"copies"`
}

type PrintResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewPrinterService(baseURL string) *PrinterService {
	if baseURL == "" {
		baseURL = DefaultPrinterURL
	}
	return &PrinterService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// PrintLabel prints box labels for one payload - a single record or the
// aggregate of a whole mixed-box group. copies is the exact number of
// labels wanted.
func (s *PrinterService) PrintLabel(payload *models.PrintPayload, copies int) error {
	if copies < 1 {
		copies = 1
	}

	req := PrintFullRequest{
		Line1: payload.SKU,
		Line2: fmt.Sprintf("qty %d / boxes %d / %s", payload.Quantity, payload.Boxes, payload.Country),
		Line3: payload.Barcode,
		Font1: "5",
		Font2: "4",
	}

	// 2-up prints 2 labels per sheet.
	// For odd counts, print (n-1)/2 sheets of 2-up, then 1 single label.
	twoUpCopies := copies / 2
	singleLabel := copies % 2

	if twoUpCopies > 0 {
		req.Copies = twoUpCopies
		if err := s.sendPrintRequest("/print-2up", req); err != nil {
			return err
		}
	}

	if singleLabel > 0 {
		req.Copies = 1
		if err := s.sendPrintRequest("/print-full", req); err != nil {
			return err
		}
	}

	return nil
}

func (s *PrinterService) sendPrintRequest(endpoint string, req PrintFullRequest) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal print request: %w", err)
	}

	resp, err := s.client.Post(
		s.baseURL+endpoint,
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("failed to send print request: %w", err)
	}
	defer resp.Body.Close()

	var printResp PrintResponse
	if err := json.NewDecoder(resp.Body).Decode(&printResp); err != nil {
		return fmt.Errorf("failed to decode print response: %w", err)
	}

	if !printResp.Success {
		return fmt.Errorf("print failed: %s", printResp.Message)
	}

	return nil
}
