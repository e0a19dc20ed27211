package task

import (
	"time"

	"github.com/workmesh/ledger/src/utils/config"
)

// Restarts the watched task whenever it quits or stops being healthy.
// Every restart builds a fresh instance through the task factory.
type Watchdog struct {
	*Task

	task func() *Task
	isOK func() bool

	watched *Task
}

func NewWatchdog(config *config.Config) (self *Watchdog) {
	self = new(Watchdog)

	self.Task = NewTask(config, "watchdog").
		WithSubtaskFunc(self.run)

	return
}

// Factory that builds the watched task, called upon start and before every restart
func (self *Watchdog) WithTask(f func() *Task) *Watchdog {
	self.task = f
	return self
}

// Health check polled once per check period, returning false triggers a restart
func (self *Watchdog) WithIsOK(f func() bool) *Watchdog {
	self.isOK = f
	return self
}

func (self *Watchdog) run() error {
	for {
		if self.runWatched() {
			return nil
		}

		// Waits out a full period before the restart, throttles crash loops
		select {
		case <-self.StopChannel:
			return nil
		case <-time.After(self.Config.WatchdogCheckPeriod):
		}
	}
}

// Starts a fresh instance of the watched task and blocks until it needs a restart.
// Returns true when the watchdog itself is stopping.
func (self *Watchdog) runWatched() (stopping bool) {
	self.watched = self.task()

	err := self.watched.Start()
	if err != nil {
		self.Log.WithError(err).Error("Failed to start watched task")

		// Tears down subtasks that made it up before the failure
		self.watched.Stop()
		return false
	}

	for {
		select {
		case <-self.StopChannel:
			self.watched.StopWait()
			return true

		case <-self.watched.CtxRunning.Done():
			self.Log.Error("Watched task is not running, restarting")
			return false

		case <-time.After(self.Config.WatchdogCheckPeriod):
			if self.isOK == nil || self.isOK() {
				continue
			}
			self.Log.Warn("Watched task is not healthy, restarting")
			self.watched.StopWait()
			return false
		}
	}
}
