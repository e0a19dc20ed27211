package api

import (
	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/monitoring"
	monitor_api "github.com/workmesh/ledger/src/utils/monitoring/api"
	"github.com/workmesh/ledger/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates everything
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "api-controller")

	// Ledger and preimage stores
	store, preimages, err := ledger.NewStore(self.Ctx, config, "api")
	if err != nil {
		return
	}

	// Monitoring
	monitor := monitor_api.NewMonitor()

	monitoringServer := monitoring.NewServer(config).
		WithMonitor(monitor)

	// One-shot processing triggered over the API
	coordinator := &ledger.Coordinator{
		Store:               store,
		Engine:              ledger.NewEngine(config, store, preimages),
		AccumulatorsEnabled: config.Ledger.AccumulatorsEnabled,
	}

	// Public REST API
	server := NewServer(config).
		WithStore(store, preimages).
		WithCoordinator(coordinator).
		WithMonitor(monitor)

	// Setup everything, will start upon calling Controller.Start()
	self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(monitoringServer.Task).
		WithSubtask(server.Task)
	return
}
