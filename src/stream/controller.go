package stream

import (
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/model"
	"github.com/workmesh/ledger/src/utils/monitoring"
	monitor_streamer "github.com/workmesh/ledger/src/utils/monitoring/streamer"
	"github.com/workmesh/ledger/src/utils/publisher"
	"github.com/workmesh/ledger/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates everything
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "streamer-controller")

	// Monitoring
	monitor := monitor_streamer.NewMonitor()
	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	// The whole pipeline runs under a watchdog, a lost database or Redis
	// connection takes the pipeline down and the watchdog rebuilds it
	watched := func() *task.Task {
		// Receipts appended to the database, one notification per inserted row
		notifier := NewNotifier(config).
			WithMonitor(monitor)

		// Fanout to Redis subscribers
		redisPublisher := publisher.NewRedisPublisher[*model.ReceiptNotification](config, config.Redis, "redis-publisher").
			WithChannelName(config.Streamer.PublishChannelName).
			WithInputChannel(notifier.Output).
			WithMonitor(monitor)

		// The notifier goes first, when the publisher fails to start the
		// watchdog can still stop a fully started source
		return task.NewTask(config, "watched").
			WithSubtask(notifier.Task).
			WithSubtask(redisPublisher.Task)
	}

	// Restarts upon fresh persistent publish failures, a rebuilt Redis client
	// re-resolves the address. Failures already counted don't trigger again.
	var persistentFailures uint64
	watchdog := task.NewWatchdog(config).
		WithTask(watched).
		WithIsOK(func() bool {
			failures := monitor.GetReport().RedisPublisher.Errors.PersistentFailure.Load()
			isOK := failures == persistentFailures
			persistentFailures = failures
			if !isOK {
				monitor.GetReport().Streamer.State.NumWatchdogRestarts.Inc()
			}
			return isOK
		})

	// Setup everything, will start upon calling Controller.Start()
	self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(watchdog.Task)
	return
}
