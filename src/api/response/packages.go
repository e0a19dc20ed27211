package response

import (
	"github.com/workmesh/ledger/src/utils/model"
)

// Single package envelope, used when the caller asked for the receipt
type Package struct {
	Package model.WorkPackage `json:"package"`
	Receipt *model.Receipt    `json:"receipt,omitempty"`
}

func PackageToResponse(pkg model.WorkPackage, receipt model.Receipt) *Package {
	out := &Package{Package: pkg}
	if receipt.Hash != "" {
		out.Receipt = &receipt
	}
	return out
}

// Paginated package listing
type Packages struct {
	Items      []model.WorkPackage `json:"items"`
	Receipts   []model.Receipt     `json:"receipts,omitempty"`
	NextOffset int                 `json:"next_offset"`
}
