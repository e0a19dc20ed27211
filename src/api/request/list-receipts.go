package request

import (
	"github.com/workmesh/ledger/src/ledger"
)

type ListReceipts struct {
	ServiceID string `form:"service_id"`
	EntryType string `form:"entry_type"`
	Limit     string `form:"limit"`
	Offset    string `form:"offset"`
}

func (self *ListReceipts) ToFilter() ledger.ReceiptFilter {
	return ledger.ReceiptFilter{
		ServiceID: self.ServiceID,
		EntryType: self.EntryType,
		Limit:     parseLimit(self.Limit),
		Offset:    parseOffset(self.Offset),
	}
}
