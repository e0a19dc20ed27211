package response

import (
	"github.com/workmesh/ledger/src/utils/model"
)

// Paginated receipt listing, never served in the legacy bare-array form
type Receipts struct {
	Items      []model.Receipt `json:"items"`
	NextOffset int             `json:"next_offset"`
}
