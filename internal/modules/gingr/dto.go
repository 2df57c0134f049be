package gingr

import "time"

// Record is one reservation row from a Gingr export or webhook,
// already decoded from their payload by the transport layer.
type Record struct {
	ExternalID   string    `json:"external_id" binding:"required"`
	CustomerID   int64     `json:"customer_id"`
	PetID        int64     `json:"pet_id"`
	LodgingLabel string    `json:"lodging_label"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
}

type IngestRequest struct {
	Records []Record `json:"records" binding:"required"`
}

const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// RecordResult reports the fate of one ingested record; a failure on
// one record never aborts the batch.
type RecordResult struct {
	ExternalID    string `json:"external_id"`
	Outcome       string `json:"outcome"`
	ReservationID int64  `json:"reservation_id,omitempty"`
	ResourceName  string `json:"resource_name,omitempty"`
	Error         string `json:"error,omitempty"`
}
