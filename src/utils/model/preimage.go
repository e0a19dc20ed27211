package model

import (
	"time"

	"github.com/jackc/pgtype"
)

const (
	TablePreimage = "preimages"
)

// Content-addressed blob referenced by work packages and items.
type Preimage struct {
	// Hash the content is addressed by, as supplied by the uploader
	Hash string `gorm:"primaryKey"`

	// Content type reported on upload
	MediaType string

	// Size in bytes
	Size int64

	// Raw content
	Data pgtype.Bytea

	// Time of upload
	CreatedAt time.Time
}

func (Preimage) TableName() string {
	return TablePreimage
}
