package model

import (
	"time"

	"github.com/jackc/pgtype"
)

const (
	TableReceipt = "receipts"
)

// Entry types the system itself writes. The column is free-form text,
// external callers may record their own kinds.
const (
	ReceiptTypePackage = "package"
	ReceiptTypeReport  = "report"
)

// Immutable record of one accumulator advance.
type Receipt struct {
	// Globally unique receipt hash, replays are no-ops
	Hash string `json:"hash" gorm:"primaryKey"`

	// Service whose accumulator this receipt advanced
	ServiceID string `json:"service_id"`

	// package | report | caller-defined
	EntryType string `json:"entry_type"`

	// Accumulator sequence this receipt was folded in at
	Seq int64 `json:"seq"`

	// Chain link, root before and after this receipt
	PrevRoot string `json:"prev_root"`
	NewRoot  string `json:"new_root"`

	// Status snapshot carried by the submitter
	Status string `json:"status"`

	// Time the entry was processed
	ProcessedAt time.Time `json:"processed_at"`

	// Digest of the entry metadata, derived when not supplied
	MetadataHash string `json:"metadata_hash"`

	// Optional caller payload
	Extra pgtype.JSONB `json:"extra" gorm:"type:jsonb"`
}

func (Receipt) TableName() string {
	return TableReceipt
}
