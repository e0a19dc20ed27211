package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workmesh/ledger/src/utils/model"
)

// Coordinator drains the pending queue one package at a time. Claiming is
// atomic, so any number of coordinators can share one store.
type Coordinator struct {
	Store               Store
	Engine              Engine
	AccumulatorsEnabled bool
}

// ProcessNext claims the oldest pending package and runs it through the
// engine. processed is true whenever a package was claimed, also when the
// run failed and the package ended up failed.
func (self *Coordinator) ProcessNext(ctx context.Context) (processed bool, err error) {
	if self.Store == nil {
		return false, ErrInvalidCoordinator
	}

	pkg, found, err := self.Store.ClaimNextPending(ctx)
	if err != nil {
		return
	}
	if !found {
		return
	}
	processed = true

	report, attestations, messages, err := self.Execute(ctx, pkg)
	if err == nil {
		err = self.Finalize(ctx, pkg, report, attestations, messages)
	}
	if err != nil {
		// The claim already flipped the status, record the failure
		_ = self.Fail(ctx, pkg.ID)
		return
	}
	return
}

// Execute runs the engine stages without touching the store: refine the
// package, gather attestations, check the quorum.
func (self *Coordinator) Execute(ctx context.Context, pkg model.WorkPackage) (report model.WorkReport, attestations []model.Attestation, messages []Message, err error) {
	err = self.Engine.Validate()
	if err != nil {
		return
	}

	report, messages, err = self.Engine.Refiner.Refine(ctx, pkg, self.Engine.Preimages)
	if err != nil {
		return
	}

	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	report.PackageID = pkg.ID
	if report.ServiceID == "" {
		report.ServiceID = pkg.ServiceID
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	// A failing attestor doesn't abort the run as long as the quorum is
	// still reachable
	attestations = make([]model.Attestation, 0, len(self.Engine.Attestors))
	for _, attestor := range self.Engine.Attestors {
		attestation, attErr := attestor.Attest(ctx, report)
		if attErr != nil {
			continue
		}
		attestation.ReportID = report.ID
		attestations = append(attestations, attestation)
	}
	if len(attestations) < self.Engine.Threshold {
		err = ErrQuorumNotReached
	}
	return
}

// Finalize persists an executed package: the report with its attestations,
// the terminal status, the receipt and the accumulator hook. Every step
// tolerates replays, so a saver may call it again after a partial failure.
func (self *Coordinator) Finalize(ctx context.Context, pkg model.WorkPackage, report model.WorkReport, attestations []model.Attestation, messages []Message) (err error) {
	err = self.Store.SaveReport(ctx, report, attestations)
	if err != nil {
		// A previous attempt may have already persisted this report
		saved, _, lookupErr := self.Store.GetReportByPackage(ctx, pkg.ID)
		if lookupErr != nil || saved.ID != report.ID {
			return
		}
		err = nil
	}

	err = self.Store.UpdatePackageStatus(ctx, pkg.ID, model.PackageStatusCompleted)
	if err != nil {
		return
	}

	if self.AccumulatorsEnabled {
		_, err = self.Store.AppendReceipt(ctx, ReceiptInput{
			Hash:        report.RefineOutputHash,
			ServiceID:   report.ServiceID,
			EntryType:   model.ReceiptTypeReport,
			Status:      string(model.PackageStatusCompleted),
			ProcessedAt: report.CreatedAt,
		})
		if err != nil {
			return
		}
	}

	err = self.Engine.Accumulator.Accumulate(ctx, report, messages)
	return
}

// Fail marks a claimed package failed
func (self *Coordinator) Fail(ctx context.Context, id string) error {
	return self.Store.UpdatePackageStatus(ctx, id, model.PackageStatusFailed)
}
