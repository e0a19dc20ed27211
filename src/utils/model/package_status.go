package model

import (
	"database/sql/driver"

	"golang.org/x/exp/slices"
)

// CREATE TYPE package_status AS ENUM ('pending', 'processing', 'completed', 'failed');
type PackageStatus string

const (
	PackageStatusPending    PackageStatus = "pending"
	PackageStatusProcessing PackageStatus = "processing"
	PackageStatusCompleted  PackageStatus = "completed"
	PackageStatusFailed     PackageStatus = "failed"
)

var packageStatuses = []PackageStatus{
	PackageStatusPending,
	PackageStatusProcessing,
	PackageStatusCompleted,
	PackageStatusFailed,
}

func (self PackageStatus) Valid() bool {
	return slices.Contains(packageStatuses, self)
}

// IsTerminal tells whether no further transition is expected
func (self PackageStatus) IsTerminal() bool {
	return self == PackageStatusCompleted || self == PackageStatusFailed
}

func (self *PackageStatus) Scan(value interface{}) error {
	*self = PackageStatus(value.(string))
	return nil
}

func (self PackageStatus) Value() (driver.Value, error) {
	return string(self), nil
}
