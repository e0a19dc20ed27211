package model

import "time"

const (
	TableWorkReport = "work_reports"
)

type WorkReport struct {
	// Report id, defaulted to an uuid when empty
	ID string `json:"id" gorm:"primaryKey"`

	// Package this report was produced for, at most one report per package
	PackageID string `json:"package_id" gorm:"uniqueIndex"`

	// Denormalized from the package for filtering
	ServiceID string `json:"service_id"`

	// Digest of the full refine output
	RefineOutputHash string `json:"refine_output_hash"`

	// Short human-readable form of the refine output
	RefineOutputCompact string `json:"refine_output_compact"`

	// Execution traces, opaque to the ledger
	Traces string `json:"traces"`

	// Time of creation
	CreatedAt time.Time `json:"created_at"`
}

func (WorkReport) TableName() string {
	return TableWorkReport
}
