package model

import (
	"encoding/json"
	"time"
)

// Receipt fields carried over the database notification channel.
// Mirrors the JSON built by the receipts insert trigger.
type ReceiptNotification struct {
	Hash        string    `json:"hash"`
	ServiceID   string    `json:"service_id"`
	EntryType   string    `json:"entry_type"`
	Seq         int64     `json:"seq"`
	PrevRoot    string    `json:"prev_root"`
	NewRoot     string    `json:"new_root"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processed_at"`
}

func (self *ReceiptNotification) MarshalBinary() (data []byte, err error) {
	return json.Marshal(self)
}
