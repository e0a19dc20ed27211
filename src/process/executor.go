package process

import (
	"errors"

	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/model"
	"github.com/workmesh/ledger/src/utils/monitoring"
	"github.com/workmesh/ledger/src/utils/task"
)

// Outcome of running one package through the engine. Failed runs travel to
// the saver too, that's where the terminal status gets persisted.
type Outcome struct {
	Package      model.WorkPackage
	Report       model.WorkReport
	Attestations []model.Attestation
	Messages     []ledger.Message
	Err          error
}

// Runs claimed packages through refine and attestation on a worker pool
type Executor struct {
	*task.Task
	coordinator *ledger.Coordinator
	monitor     monitoring.Monitor

	input  chan *model.WorkPackage
	Output chan *Outcome
}

func NewExecutor(config *config.Config) (self *Executor) {
	self = new(Executor)

	self.Output = make(chan *Outcome)

	self.Task = task.NewTask(config, "executor").
		WithSubtaskFunc(self.run).
		WithWorkerPool(config.Engine.NumWorkers, config.Engine.WorkerQueueSize).
		// Registered after the pool, workers are done before the channel closes
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *Executor) WithCoordinator(coordinator *ledger.Coordinator) *Executor {
	self.coordinator = coordinator
	return self
}

func (self *Executor) WithInputChannel(input chan *model.WorkPackage) *Executor {
	self.input = input
	return self
}

func (self *Executor) WithMonitor(monitor monitoring.Monitor) *Executor {
	self.monitor = monitor
	return self
}

func (self *Executor) run() error {
	// Blocks waiting for claimed packages
	// Quits when the channel is closed
	for pkg := range self.input {
		pkg := pkg
		self.SubmitToWorker(func() {
			self.execute(pkg)
		})
	}

	return nil
}

func (self *Executor) execute(pkg *model.WorkPackage) {
	report, attestations, messages, err := self.coordinator.Execute(self.Ctx, *pkg)
	if err != nil {
		// Update monitoring
		if errors.Is(err, ledger.ErrQuorumNotReached) {
			self.monitor.GetReport().Processor.Errors.QuorumFailures.Inc()
		} else {
			self.monitor.GetReport().Processor.Errors.ProcessingErrors.Inc()
		}

		self.Log.WithError(err).WithField("id", pkg.ID).Error("Failed to execute package")
	}

	select {
	case <-self.Ctx.Done():
	case self.Output <- &Outcome{
		Package:      *pkg,
		Report:       report,
		Attestations: attestations,
		Messages:     messages,
		Err:          err,
	}:
	}
}
