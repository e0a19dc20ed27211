package model

import "time"

const (
	TableAttestation = "attestations"
)

// One vote per (report, worker). Resubmission replaces the previous vote.
type Attestation struct {
	ReportID      string    `json:"report_id" gorm:"primaryKey"`
	WorkerID      string    `json:"worker_id" gorm:"primaryKey"`
	Signature     string    `json:"signature"`
	Weight        int64     `json:"weight"`
	CreatedAt     time.Time `json:"created_at"`
	Engine        string    `json:"engine"`
	EngineVersion string    `json:"engine_version"`
}

func (Attestation) TableName() string {
	return TableAttestation
}
