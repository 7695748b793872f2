package models

import "time"

// Box type values for InventoryRecord.BoxType
const (
	BoxTypeWhole = "whole"
	BoxTypeMixed = "mixed"
)

// Lifecycle status values for InventoryRecord.Status
const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusCancelled = "cancelled"
)

type InventoryRecord struct {
	ID             string    `json:"id"`
	SKU            string    `json:"sku"`
	TotalQuantity  int       `json:"total_quantity"`
	TotalBoxes     int       `json:"total_boxes"`
	BoxType        string    `json:"box_type"` // 'whole' or 'mixed'
	MixBoxGroupKey *string   `json:"mix_box_group_key,omitempty"` // Shared by all records from one physical mixed box
	Country        string    `json:"country"`
	Operator       string    `json:"operator"`
	Packer         string    `json:"packer,omitempty"`
	Remark         string    `json:"remark,omitempty"`
	Status         string    `json:"status"` // 'pending', 'shipped', 'cancelled'
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsMixed reports whether this record is one SKU's share of a mixed box.
func (r *InventoryRecord) IsMixed() bool {
	return r.BoxType == BoxTypeMixed && r.MixBoxGroupKey != nil
}

// WholeBoxIntakeRequest represents the request body for whole-box intake
type WholeBoxIntakeRequest struct {
	LinesText string `json:"lines_text"` // One "SKU <boxes>" entry per line
	Country   string `json:"country"`
	Packer    string `json:"packer"`
	Remark    string `json:"remark"`
}

// StartMixedIntakeRequest represents the request body for starting a mixed-box session
type StartMixedIntakeRequest struct {
	TotalBoxes int    `json:"total_boxes"`
	Country    string `json:"country"`
	Packer     string `json:"packer"`
	Remark     string `json:"remark"`
}

// CommitBoxRequest represents the request body for committing one mixed box
type CommitBoxRequest struct {
	LinesText string `json:"lines_text"`
}

// UpdateRecordRequest represents the request body for updating a single record
type UpdateRecordRequest struct {
	SKU           string `json:"sku"`
	TotalQuantity int    `json:"total_quantity"`
	TotalBoxes    int    `json:"total_boxes"`
	Country       string `json:"country"`
	Packer        string `json:"packer"`
	Remark        string `json:"remark"`
	Status        string `json:"status"`
}

// GroupPatch is the metadata patch applied to every member of a mixed-box
// group. SKU and quantity stay per-record; group-level fields are replicated
// onto all members so the flat storage shape keeps the group invariant.
type GroupPatch struct {
	Country string `json:"country"`
	Packer  string `json:"packer"`
	Remark  string `json:"remark"`
	Status  string `json:"status"`
}

// PrintPayload is the shape handed to the label-printer collaborator,
// either per-record or aggregated for a whole mixed-box group.
type PrintPayload struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Boxes    int    `json:"boxes"`
	Country  string `json:"country"`
	Operator string `json:"operator"`
	Packer   string `json:"packer"`
	BoxType  string `json:"box_type"`
	GroupKey string `json:"group_key,omitempty"`
	Barcode  string `json:"barcode"`
}
