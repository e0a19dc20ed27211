package request

import (
	"time"

	"github.com/workmesh/ledger/src/ledger"
)

type AppendReceipt struct {
	Hash         string                 `json:"hash"`
	ServiceID    string                 `json:"service_id"`
	EntryType    string                 `json:"entry_type"`
	Status       string                 `json:"status"`
	ProcessedAt  time.Time              `json:"processed_at"`
	MetadataHash string                 `json:"metadata_hash"`
	Extra        map[string]interface{} `json:"extra"`
}

func (self *AppendReceipt) ToInput() ledger.ReceiptInput {
	return ledger.ReceiptInput{
		Hash:         self.Hash,
		ServiceID:    self.ServiceID,
		EntryType:    self.EntryType,
		Status:       self.Status,
		ProcessedAt:  self.ProcessedAt,
		MetadataHash: self.MetadataHash,
		Extra:        self.Extra,
	}
}
