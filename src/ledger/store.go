package ledger

import (
	"context"

	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/model"
)

// NewStore builds the configured store pair: the ledger store and the
// preimage store, both backed by the same database when postgres is used.
// The accumulator toggles from the configuration are applied here.
func NewStore(ctx context.Context, config *config.Config, applicationName string) (store Store, preimages PreimageStore, err error) {
	switch config.Ledger.Store {
	case "memory":
		store = NewMemoryStore()
		preimages = NewMemoryPreimageStore()
	default:
		db, dbErr := model.NewConnection(ctx, config, applicationName)
		if dbErr != nil {
			err = dbErr
			return
		}
		store = NewPostgresStore(db)
		preimages = NewPostgresPreimageStore(db)
	}

	store.SetAccumulatorsEnabled(config.Ledger.AccumulatorsEnabled)
	store.SetAccumulatorHash(config.Ledger.AccumulatorHash)
	return
}
