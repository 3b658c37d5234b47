package models

import "time"

// Contribution represents one payment into a cooperative's pool.
// The contribution ledger is append-only: records are immutable once created.
type Contribution struct {
	ID            int64     `json:"id"`
	CooperativeID int64     `json:"cooperative_id"`
	UserID        int64     `json:"user_id"`
	Amount        int64     `json:"amount"` // RWF, > 0
	Date          time.Time `json:"date"`
}
