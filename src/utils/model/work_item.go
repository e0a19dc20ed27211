package model

import "github.com/lib/pq"

const (
	TableWorkItem = "work_items"
)

type WorkItem struct {
	ID             string         `json:"id" gorm:"primaryKey"`
	PackageID      string         `json:"package_id"`
	Kind           string         `json:"kind"`
	ParamsHash     string         `json:"params_hash"`
	PreimageHashes pq.StringArray `json:"preimage_hashes" gorm:"type:text[]"`
	MaxFee         int64          `json:"max_fee"`
	Memo           string         `json:"memo"`
}

func (WorkItem) TableName() string {
	return TableWorkItem
}
