package ledger

import (
	"context"
	"time"

	"github.com/workmesh/ledger/src/utils/model"
)

// Default page size for list operations when the filter doesn't set one
const defaultListLimit = 50

// Store is the durable ledger behind the API and the processing pipeline.
// Implementations keep every multi-row write transactional and stay safe for
// many concurrent callers.
type Store interface {
	// EnqueuePackage inserts a package together with its items in one
	// transaction. Status defaults to pending, created_at to now.
	EnqueuePackage(ctx context.Context, pkg model.WorkPackage) error

	// ClaimNextPending atomically picks the oldest pending package, flips it
	// to processing and returns it with items attached. found is false when
	// the queue is empty. No two callers ever receive the same package.
	ClaimNextPending(ctx context.Context) (pkg model.WorkPackage, found bool, err error)

	GetPackage(ctx context.Context, id string) (model.WorkPackage, error)

	// UpdatePackageStatus returns ErrNotFound when no such package exists
	UpdatePackageStatus(ctx context.Context, id string, status model.PackageStatus) error

	// SaveReport inserts the report and upserts its attestations, keyed by
	// (report_id, worker_id), in one transaction. The package has to exist.
	SaveReport(ctx context.Context, report model.WorkReport, attestations []model.Attestation) error

	GetReportByPackage(ctx context.Context, packageID string) (model.WorkReport, []model.Attestation, error)

	// AppendReceipt advances the service's accumulator by exactly one step
	// and records the receipt. Appending the same hash twice returns the
	// stored receipt and leaves the accumulator untouched. When accumulators
	// are disabled it is a no-op returning an empty receipt.
	AppendReceipt(ctx context.Context, input ReceiptInput) (model.Receipt, error)

	Receipt(ctx context.Context, hash string) (model.Receipt, error)

	// AccumulatorRoot returns the zero value for unknown services, never
	// ErrNotFound
	AccumulatorRoot(ctx context.Context, serviceID string) (model.AccumulatorRoot, error)
	AccumulatorRoots(ctx context.Context) ([]model.AccumulatorRoot, error)

	ListPackages(ctx context.Context, filter PackageFilter) ([]model.WorkPackage, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.WorkReport, error)
	ListReceipts(ctx context.Context, filter ReceiptFilter) ([]model.Receipt, error)

	PendingCount(ctx context.Context) (int, error)

	SetAccumulatorHash(algo string)
	SetAccumulatorsEnabled(enabled bool)
	HashAlgorithm() string
}

// ReceiptInput is one accumulator entry before sealing. Seq and the roots are
// assigned by the store.
type ReceiptInput struct {
	Hash         string
	ServiceID    string
	EntryType    string
	Status       string
	ProcessedAt  time.Time
	MetadataHash string
	Extra        map[string]interface{}
}

type PackageFilter struct {
	Status    model.PackageStatus
	ServiceID string
	Limit     int
	Offset    int
}

type ReportFilter struct {
	ServiceID string
	Limit     int
	Offset    int
}

type ReceiptFilter struct {
	ServiceID string
	EntryType string
	Limit     int
	Offset    int
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func pageBounds(total, offset, limit int) (start, end int) {
	start = offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end = start + limitOrDefault(limit)
	if end > total {
		end = total
	}
	return
}

func validatePackage(pkg *model.WorkPackage) error {
	if pkg.ID == "" {
		return ValidationError("package id is required")
	}
	if pkg.ServiceID == "" {
		return ValidationError("package service id is required")
	}
	if len(pkg.Items) == 0 {
		return ValidationError("package needs at least one work item")
	}
	for i := range pkg.Items {
		if pkg.Items[i].ID == "" {
			return ValidationError("work item id is required")
		}
	}
	return nil
}

func validateReport(report *model.WorkReport) error {
	if report.ID == "" {
		return ValidationError("report id is required")
	}
	if report.PackageID == "" {
		return ValidationError("report package id is required")
	}
	if report.ServiceID == "" {
		return ValidationError("report service id is required")
	}
	return nil
}

func validateReceiptInput(input *ReceiptInput) error {
	if input.Hash == "" || input.ServiceID == "" || input.EntryType == "" {
		return ValidationError("missing receipt fields")
	}
	return nil
}
