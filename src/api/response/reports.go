package response

import (
	"github.com/workmesh/ledger/src/utils/model"
)

// Report with its attestations, the receipt tags along upon request
type Report struct {
	Report       model.WorkReport    `json:"report"`
	Attestations []model.Attestation `json:"attestations"`
	Receipt      *model.Receipt      `json:"receipt,omitempty"`
}

func ReportToResponse(report model.WorkReport, attestations []model.Attestation, receipt model.Receipt) *Report {
	out := &Report{Report: report, Attestations: attestations}
	if receipt.Hash != "" {
		out.Receipt = &receipt
	}
	return out
}

// Paginated report listing
type Reports struct {
	Items      []model.WorkReport `json:"items"`
	Receipts   []model.Receipt    `json:"receipts,omitempty"`
	NextOffset int                `json:"next_offset"`
}
