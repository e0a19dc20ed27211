package model

import "time"

const (
	TableAccumulator = "accumulators"
)

// Head of a service's hash chain. Seq increases by exactly one per accepted
// receipt, Root is the digest after folding that receipt in.
type AccumulatorRoot struct {
	ServiceID string    `json:"service_id" gorm:"primaryKey"`
	Seq       int64     `json:"seq"`
	Root      string    `json:"root"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AccumulatorRoot) TableName() string {
	return TableAccumulator
}
