package request

import (
	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/model"
)

// Package listing filters. Numbers arrive as strings, values that don't
// parse are ignored rather than rejected.
type ListPackages struct {
	Status    string `form:"status"`
	ServiceID string `form:"service_id"`
	Limit     string `form:"limit"`
	Offset    string `form:"offset"`
}

func (self *ListPackages) ToFilter() ledger.PackageFilter {
	return ledger.PackageFilter{
		Status:    model.PackageStatus(self.Status),
		ServiceID: self.ServiceID,
		Limit:     parseLimit(self.Limit),
		Offset:    parseOffset(self.Offset),
	}
}
