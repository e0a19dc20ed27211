package process

import (
	"context"
	"time"

	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/model"
	"github.com/workmesh/ledger/src/utils/monitoring"
	"github.com/workmesh/ledger/src/utils/task"
)

// Periodically claims pending packages from the store and passes them on for execution
type Poller struct {
	*task.Task
	store   ledger.Store
	monitor monitoring.Monitor

	Output chan *model.WorkPackage
}

// Each claim flips the package to processing, so a crashed worker never
// leaves a package claimed by two processors
func NewPoller(config *config.Config) (self *Poller) {
	self = new(Poller)

	self.Output = make(chan *model.WorkPackage)

	self.Task = task.NewTask(config, "poller").
		WithRepeatedSubtaskFunc(config.Engine.PollerInterval, self.handleClaim).
		WithPeriodicSubtaskFunc(time.Minute, self.handlePendingGauge).
		WithOnAfterStop(func() {
			// Lets the executor drain and quit
			close(self.Output)
		})

	return
}

func (self *Poller) WithStore(store ledger.Store) *Poller {
	self.store = store
	return self
}

func (self *Poller) WithMonitor(monitor monitoring.Monitor) *Poller {
	self.monitor = monitor
	return self
}

func (self *Poller) handleClaim() (repeat bool, err error) {
	// Interrupts longer queries
	ctx, cancel := context.WithTimeout(self.Ctx, self.Config.Engine.PollerTimeout)
	defer cancel()

	claimed := 0
	for claimed < self.Config.Engine.PollerBatchSize {
		pkg, found, err := self.store.ClaimNextPending(ctx)
		if err != nil {
			self.monitor.GetReport().Processor.Errors.ClaimErrors.Inc()
			self.Log.WithError(err).Error("Failed to claim pending package")
			return false, err
		}
		if !found {
			break
		}

		select {
		case <-self.Ctx.Done():
			return false, nil
		case self.Output <- &pkg:
		}

		claimed += 1
	}

	if claimed > 0 {
		self.Log.WithField("len", claimed).Debug("Claimed packages for processing")
	}

	// Update monitoring
	self.monitor.GetReport().Processor.State.PackagesClaimed.Add(uint64(claimed))

	// If we claimed a full batch there may be more waiting
	repeat = claimed == self.Config.Engine.PollerBatchSize
	return
}

func (self *Poller) handlePendingGauge() error {
	ctx, cancel := context.WithTimeout(self.Ctx, self.Config.Engine.PollerTimeout)
	defer cancel()

	count, err := self.store.PendingCount(ctx)
	if err != nil {
		self.monitor.GetReport().Processor.Errors.ClaimErrors.Inc()
		self.Log.WithError(err).Error("Failed to count pending packages")

		// Keep polling, health checks need this gauge
		return nil
	}

	self.monitor.GetReport().Processor.State.PendingPackages.Store(int64(count))
	return nil
}
