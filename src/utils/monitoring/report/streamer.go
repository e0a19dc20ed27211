package report

import (
	"go.uber.org/atomic"
)

type StreamerErrors struct {
	ListenErrors atomic.Uint64 `json:"listen"`
	ParseErrors  atomic.Uint64 `json:"parse"`
}

type StreamerState struct {
	NotificationsReceived atomic.Uint64 `json:"notifications_received"`
	NumWatchdogRestarts   atomic.Uint64 `json:"num_watchdog_restarts"`
}

type StreamerReport struct {
	State  StreamerState  `json:"state"`
	Errors StreamerErrors `json:"errors"`
}
