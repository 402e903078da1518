package model

import "time"

// Item is a single inventory record tracked for low-stock alerting.
type Item struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name,omitempty" db:"name"`
	Stock     int       `json:"stock" db:"stock"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the item name, falling back to the identifier.
func (i Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// CheckResult is the outcome of a single check-and-send invocation.
type CheckResult string

const (
	// ResultNone means no item is below the threshold; nothing was sent
	// and the daily flag was not consumed.
	ResultNone CheckResult = "NONE"

	// ResultSkipped means today's alert was already sent.
	ResultSkipped CheckResult = "SKIPPED"

	// ResultSent means an alert was delivered and the day marked.
	ResultSent CheckResult = "SENT"
)

// AlertState is the durable per-stream idempotency record. LastSentDate
// only ever advances; same-day re-marks are no-ops.
type AlertState struct {
	Stream       string    `json:"stream" db:"stream"`
	LastSentDate string    `json:"last_sent_date" db:"last_sent_date"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AlertRecord is one entry in the alert history log.
type AlertRecord struct {
	ID        string    `json:"id" db:"id"`
	Stream    string    `json:"stream" db:"stream"`
	Recipient string    `json:"recipient" db:"recipient"`
	ItemCount int       `json:"item_count" db:"item_count"`
	Message   string    `json:"message" db:"message"`
	SentAt    time.Time `json:"sent_at" db:"sent_at"`
}
