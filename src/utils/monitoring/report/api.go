package report

import (
	"go.uber.org/atomic"
)

type ApiErrors struct {
	DbError           atomic.Uint64 `json:"db"`
	ValidationErrors  atomic.Uint64 `json:"validation"`
	AuthFailures      atomic.Uint64 `json:"auth"`
	RateLimitedPeers  atomic.Uint64 `json:"rate_limited"`
	QueueLimitReached atomic.Uint64 `json:"queue_limit_reached"`
}

type ApiState struct {
	PackagesEnqueued atomic.Uint64 `json:"packages_enqueued"`
	ProcessTriggers  atomic.Uint64 `json:"process_triggers"`
	PreimagesStored  atomic.Uint64 `json:"preimages_stored"`
	PreimagesServed  atomic.Uint64 `json:"preimages_served"`
}

type ApiReport struct {
	State  ApiState  `json:"state"`
	Errors ApiErrors `json:"errors"`
}
