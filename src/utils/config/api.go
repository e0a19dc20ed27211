package config

import (
	"time"

	"github.com/spf13/viper"
)

type Api struct {
	// Public REST API address
	ListenAddress string

	// Is a bearer token required for every request
	AuthRequired bool

	// Accepted bearer tokens
	Tokens []string

	// Per token request budget, 0 disables rate limiting
	RateLimitPerMinute int

	// How long an idle token keeps its limiter
	RateLimiterTtl time.Duration

	// Serve list endpoints as bare arrays, pre-pagination format
	LegacyListResponse bool
}

func setApiDefaults() {
	viper.SetDefault("Api.ListenAddress", "0.0.0.0:4000")
	viper.SetDefault("Api.AuthRequired", "false")
	viper.SetDefault("Api.Tokens", "")
	viper.SetDefault("Api.RateLimitPerMinute", "0")
	viper.SetDefault("Api.RateLimiterTtl", "10m")
	viper.SetDefault("Api.LegacyListResponse", "false")
}
