package domain

import "time"

type RecurrenceFrequency string

const (
	RecurrenceDaily    RecurrenceFrequency = "daily"
	RecurrenceWeekly   RecurrenceFrequency = "weekly"
	RecurrenceBiweekly RecurrenceFrequency = "biweekly"
	RecurrenceMonthly  RecurrenceFrequency = "monthly"
)

func (f RecurrenceFrequency) Valid() bool {
	switch f {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	}
	return false
}

// RecurrencePattern repeats a template reservation into concrete
// instances. Count and Until are both optional end conditions; an
// open-ended pattern is bounded by the caller's horizon instead.
type RecurrencePattern struct {
	ID            int64               `json:"id"`
	TenantID      int64               `json:"tenant_id"`
	ReservationID int64               `json:"reservation_id"`
	Frequency     RecurrenceFrequency `json:"frequency" validate:"required"`
	Interval      int                 `json:"interval"`
	Count         *int                `json:"count,omitempty"`
	Until         *time.Time          `json:"until,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}
