package report

import (
	"go.uber.org/atomic"
)

type ProcessorErrors struct {
	ClaimErrors       atomic.Uint64 `json:"claim"`
	ProcessingErrors  atomic.Uint64 `json:"processing"`
	QuorumFailures    atomic.Uint64 `json:"quorum"`
	SaveErrors        atomic.Uint64 `json:"save"`
	PersistentFailure atomic.Uint64 `json:"persistent"`
}

type ProcessorState struct {
	PendingPackages   atomic.Int64  `json:"pending_packages"`
	PackagesClaimed   atomic.Uint64 `json:"packages_claimed"`
	PackagesCompleted atomic.Uint64 `json:"packages_completed"`
	PackagesFailed    atomic.Uint64 `json:"packages_failed"`
	ReportsSaved      atomic.Uint64 `json:"reports_saved"`
	ReceiptsAppended  atomic.Uint64 `json:"receipts_appended"`

	AveragePackagesProcessedPerMinute atomic.Float64 `json:"average_packages_processed_per_minute"`
}

type ProcessorReport struct {
	State  ProcessorState  `json:"state"`
	Errors ProcessorErrors `json:"errors"`
}
