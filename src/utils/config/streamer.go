package config

import (
	"github.com/spf13/viper"
)

type Streamer struct {
	// Postgres notification channel with appended receipts
	NotificationChannelName string

	// Buffered notifications before backpressure kicks in
	Capacity int

	// Redis pub/sub channel receipts are forwarded to
	PublishChannelName string
}

func setStreamerDefaults() {
	viper.SetDefault("Streamer.NotificationChannelName", "ledger_receipts")
	viper.SetDefault("Streamer.Capacity", "64")
	viper.SetDefault("Streamer.PublishChannelName", "ledger/receipts")
}
