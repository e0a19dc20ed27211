package process

import (
	"errors"

	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/monitoring"
	"github.com/workmesh/ledger/src/utils/task"
)

// Periodically persists execution outcomes
// Hole handles caching data and periodically calling flush function
type Saver struct {
	*task.Hole[*Outcome]
	coordinator *ledger.Coordinator
	monitor     monitoring.Monitor
}

func NewSaver(config *config.Config) (self *Saver) {
	self = new(Saver)

	self.Hole = task.NewHole[*Outcome](config, "saver").
		WithOnFlush(config.Engine.SaverInterval, self.flush).
		WithBatchSize(config.Engine.SaverBatchSize).
		WithBackoff(config.Engine.SaverBackoffMaxElapsedTime, config.Engine.SaverBackoffMaxInterval)

	return
}

func (self *Saver) WithCoordinator(coordinator *ledger.Coordinator) *Saver {
	self.coordinator = coordinator
	return self
}

func (self *Saver) WithInputChannel(input chan *Outcome) *Saver {
	self.Hole = self.Hole.WithInputChannel(input)
	return self
}

func (self *Saver) WithMonitor(monitor monitoring.Monitor) *Saver {
	self.monitor = monitor
	return self
}

func (self *Saver) flush(outcomes []*Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	self.Log.WithField("len", len(outcomes)).Debug("Saving package outcomes")

	var completed, failed uint64
	for _, outcome := range outcomes {
		err := self.save(outcome)
		if err != nil {
			// Retrying won't heal rejected input, drop the outcome instead of
			// blocking the rest of the batch
			var validationErr ledger.ValidationError
			if errors.As(err, &validationErr) || errors.Is(err, ledger.ErrNotFound) {
				self.monitor.GetReport().Processor.Errors.PersistentFailure.Inc()
				self.Log.WithError(err).WithField("id", outcome.Package.ID).Error("Dropped outcome that cannot be saved")
				continue
			}

			// Update monitoring
			self.monitor.GetReport().Processor.Errors.SaveErrors.Inc()
			self.Log.WithError(err).WithField("id", outcome.Package.ID).Error("Failed to save outcome")
			return err
		}

		if outcome.Err != nil {
			failed += 1
		} else {
			completed += 1
		}
	}

	// Update monitoring. Counters move only once the whole batch went through.
	self.monitor.GetReport().Processor.State.PackagesFailed.Add(failed)
	self.monitor.GetReport().Processor.State.PackagesCompleted.Add(completed)
	self.monitor.GetReport().Processor.State.ReportsSaved.Add(completed)
	if self.coordinator.AccumulatorsEnabled {
		self.monitor.GetReport().Processor.State.ReceiptsAppended.Add(completed)
	}

	return nil
}

// Replays after a partial failure are safe, receipts dedupe on hash and
// saving an already stored report is tolerated
func (self *Saver) save(outcome *Outcome) error {
	if outcome.Err != nil {
		return self.coordinator.Fail(self.Ctx, outcome.Package.ID)
	}

	return self.coordinator.Finalize(self.Ctx, outcome.Package, outcome.Report, outcome.Attestations, outcome.Messages)
}
