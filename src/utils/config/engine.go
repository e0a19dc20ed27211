package config

import (
	"time"

	"github.com/spf13/viper"
)

type Engine struct {
	// How often the poller checks for pending packages
	PollerInterval time.Duration

	// Max packages claimed in one query
	PollerBatchSize int

	// Interrupts longer claim queries
	PollerTimeout time.Duration

	// Num of workers that execute packages in parallel
	NumWorkers int

	// Max num of packages in a worker's queue
	WorkerQueueSize int

	// Minimum number of attestations for a report to be accepted
	Threshold int

	// Identity and weight of the built-in attestor
	AttestorWorkerId string
	AttestorWeight   int64

	// Optional HTTP attestation backend
	RemoteAttestorEnabled bool
	RemoteAttestorUrl     string
	RemoteAttestorTimeout time.Duration

	// Outcome saver batching
	SaverBatchSize int
	SaverInterval  time.Duration

	// Saver retry backoff, 0 elapsed time is no limit
	SaverBackoffMaxElapsedTime time.Duration
	SaverBackoffMaxInterval    time.Duration
}

func setEngineDefaults() {
	viper.SetDefault("Engine.PollerInterval", "1s")
	viper.SetDefault("Engine.PollerBatchSize", "32")
	viper.SetDefault("Engine.PollerTimeout", "5m")
	viper.SetDefault("Engine.NumWorkers", "8")
	viper.SetDefault("Engine.WorkerQueueSize", "32")
	viper.SetDefault("Engine.Threshold", "1")
	viper.SetDefault("Engine.AttestorWorkerId", "local")
	viper.SetDefault("Engine.AttestorWeight", "1")
	viper.SetDefault("Engine.RemoteAttestorEnabled", "false")
	viper.SetDefault("Engine.RemoteAttestorUrl", "")
	viper.SetDefault("Engine.RemoteAttestorTimeout", "10s")
	viper.SetDefault("Engine.SaverBatchSize", "16")
	viper.SetDefault("Engine.SaverInterval", "1s")
	viper.SetDefault("Engine.SaverBackoffMaxElapsedTime", "10m")
	viper.SetDefault("Engine.SaverBackoffMaxInterval", "30s")
}
