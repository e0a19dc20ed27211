package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	TableWorkPackage = "work_packages"
)

type WorkPackage struct {
	// Client-assigned package id, defaulted to an uuid when empty
	ID string `json:"id" gorm:"primaryKey"`

	// Logical service this package belongs to
	ServiceID string `json:"service_id"`

	// Identity of the submitter
	CreatedBy string `json:"created_by"`

	// Submitter-side replay protection, opaque to the ledger
	Nonce int64 `json:"nonce"`

	// Unix time after which workers should not execute the package
	Expiry int64 `json:"expiry"`

	// Submitter signature over the package, not verified here
	Signature string `json:"signature"`

	// Hashes of preimages the whole package depends on
	PreimageHashes pq.StringArray `json:"preimage_hashes" gorm:"type:text[]"`

	// pending | processing | completed | failed
	Status PackageStatus `json:"status" gorm:"type:package_status"`

	// Time of submission
	CreatedAt time.Time `json:"created_at"`

	// Items are attached explicitly by the store, gorm does not map them
	Items []WorkItem `json:"items" gorm:"-"`
}

func (WorkPackage) TableName() string {
	return TableWorkPackage
}
