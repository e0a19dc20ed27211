package config

import (
	"github.com/spf13/viper"
)

type Ledger struct {
	// Which store backs the ledger: postgres or memory
	Store string

	// Is the accumulator ledger advanced upon receipts
	AccumulatorsEnabled bool

	// Named hashing strategy used for root derivation
	AccumulatorHash string

	// Max number of packages waiting in the queue, 0 is no limit
	MaxPendingPackages int

	// Max accepted preimage blob size
	MaxPreimageBytes int
}

func setLedgerDefaults() {
	viper.SetDefault("Ledger.Store", "postgres")
	viper.SetDefault("Ledger.AccumulatorsEnabled", "true")
	viper.SetDefault("Ledger.AccumulatorHash", "blake3-256")
	viper.SetDefault("Ledger.MaxPendingPackages", "0")
	viper.SetDefault("Ledger.MaxPreimageBytes", "1048576")
}
