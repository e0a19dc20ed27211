package request

import (
	"github.com/workmesh/ledger/src/ledger"
)

type ListReports struct {
	ServiceID string `form:"service_id"`
	Limit     string `form:"limit"`
	Offset    string `form:"offset"`
}

func (self *ListReports) ToFilter() ledger.ReportFilter {
	return ledger.ReportFilter{
		ServiceID: self.ServiceID,
		Limit:     parseLimit(self.Limit),
		Offset:    parseOffset(self.Offset),
	}
}
