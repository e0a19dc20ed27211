package stream

import (
	"encoding/json"
	"errors"

	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/model"
	"github.com/workmesh/ledger/src/utils/monitoring"
	"github.com/workmesh/ledger/src/utils/notify"
	"github.com/workmesh/ledger/src/utils/task"
)

// Gets a live stream of appended receipts, parses them and puts them on the output channel
type Notifier struct {
	*task.Task

	streamer *notify.Streamer
	monitor  monitoring.Monitor

	Output chan *model.ReceiptNotification
}

func NewNotifier(config *config.Config) (self *Notifier) {
	self = new(Notifier)

	self.Output = make(chan *model.ReceiptNotification, config.Streamer.Capacity)

	// Live source of receipts, the database emits one notification per inserted row
	self.streamer = notify.NewStreamer(config).
		WithNotificationChannelName(config.Streamer.NotificationChannelName).
		WithCapacity(config.Streamer.Capacity)

	self.Task = task.NewTask(config, "notifier").
		WithSubtask(self.streamer.Task).
		WithSubtaskFunc(self.run).
		WithOnAfterStop(func() {
			// Lets the publisher drain and quit
			close(self.Output)
		})

	return
}

func (self *Notifier) WithMonitor(monitor monitoring.Monitor) *Notifier {
	self.monitor = monitor
	return self
}

func (self *Notifier) run() error {
	for {
		select {
		case <-self.Ctx.Done():
			return nil
		case msg, ok := <-self.streamer.Output:
			if !ok {
				if self.IsStopping.Load() {
					self.Log.Info("Notification streamer channel closed")
					return nil
				}

				// Feed died while we're still supposed to run
				self.monitor.GetReport().Streamer.Errors.ListenErrors.Inc()
				self.Log.Error("Notification streamer channel closed unexpectedly")
				return errors.New("notification channel closed")
			}

			// Update monitoring
			self.monitor.GetReport().Streamer.State.NotificationsReceived.Inc()

			var notification model.ReceiptNotification
			err := json.Unmarshal([]byte(msg), &notification)
			if err != nil {
				self.monitor.GetReport().Streamer.Errors.ParseErrors.Inc()
				self.Log.WithError(err).Error("Failed to unmarshal receipt notification")
				continue
			}

			select {
			case <-self.Ctx.Done():
				return nil
			case self.Output <- &notification:
			}
		}
	}
}
