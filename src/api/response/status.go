package response

import (
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/model"
)

// Effective ledger configuration plus queue and accumulator state
type Status struct {
	Store               string `json:"store"`
	RateLimitPerMinute  int    `json:"rate_limit_per_min"`
	MaxPreimageBytes    int    `json:"max_preimage_bytes"`
	MaxPendingPackages  int    `json:"max_pending_packages"`
	AuthRequired        bool   `json:"auth_required"`
	LegacyListResponse  bool   `json:"legacy_list_response"`
	AccumulatorsEnabled bool   `json:"accumulators_enabled"`
	AccumulatorHash     string `json:"accumulator_hash"`
	PendingPackages     int    `json:"pending_packages"`

	AccumulatorRoot  *model.AccumulatorRoot  `json:"accumulator_root,omitempty"`
	AccumulatorRoots []model.AccumulatorRoot `json:"accumulator_roots,omitempty"`
}

func StatusToResponse(config *config.Config, hashAlgorithm string, pending int) *Status {
	return &Status{
		Store:               config.Ledger.Store,
		RateLimitPerMinute:  config.Api.RateLimitPerMinute,
		MaxPreimageBytes:    config.Ledger.MaxPreimageBytes,
		MaxPendingPackages:  config.Ledger.MaxPendingPackages,
		AuthRequired:        config.Api.AuthRequired,
		LegacyListResponse:  config.Api.LegacyListResponse,
		AccumulatorsEnabled: config.Ledger.AccumulatorsEnabled,
		AccumulatorHash:     hashAlgorithm,
		PendingPackages:     pending,
	}
}
