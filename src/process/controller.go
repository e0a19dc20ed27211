package process

import (
	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/monitoring"
	monitor_processor "github.com/workmesh/ledger/src/utils/monitoring/processor"
	"github.com/workmesh/ledger/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates everything
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "processor-controller")

	// Ledger and preimage stores
	store, preimages, err := ledger.NewStore(self.Ctx, config, "processor")
	if err != nil {
		return
	}

	// Monitoring
	monitor := monitor_processor.NewMonitor().
		WithMaxHistorySize(30)

	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	// Executes refine and gathers attestations
	coordinator := &ledger.Coordinator{
		Store:               store,
		Engine:              ledger.NewEngine(config, store, preimages),
		AccumulatorsEnabled: config.Ledger.AccumulatorsEnabled,
	}

	// Claims pending packages from the store
	poller := NewPoller(config).
		WithStore(store).
		WithMonitor(monitor)

	// Runs claimed packages through the engine
	executor := NewExecutor(config).
		WithCoordinator(coordinator).
		WithInputChannel(poller.Output).
		WithMonitor(monitor)

	// Persists outcomes, reports and receipts
	saver := NewSaver(config).
		WithCoordinator(coordinator).
		WithInputChannel(executor.Output).
		WithMonitor(monitor)

	// Setup everything, will start upon calling Controller.Start()
	self.Task.
		WithSubtask(server.Task).
		WithSubtask(saver.Task).
		WithSubtask(monitor.Task).
		WithSubtask(executor.Task).
		WithSubtask(poller.Task)
	return
}
