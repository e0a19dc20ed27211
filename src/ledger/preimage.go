package ledger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgtype"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workmesh/ledger/src/utils/model"
)

// PreimageMeta describes a stored preimage without its payload
type PreimageMeta struct {
	Hash      string    `json:"hash"`
	MediaType string    `json:"media_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// PreimageStore is content addressed storage for refine inputs. Put is
// idempotent, the first payload stored under a hash wins.
type PreimageStore interface {
	Put(ctx context.Context, hash, mediaType string, reader io.Reader, size int64) (PreimageMeta, error)
	Stat(ctx context.Context, hash string) (PreimageMeta, error)
	Get(ctx context.Context, hash string) (io.ReadCloser, error)
}

// MemoryPreimageStore holds preimages in process memory
type MemoryPreimageStore struct {
	mtx  sync.RWMutex
	data map[string][]byte
	meta map[string]PreimageMeta
}

func NewMemoryPreimageStore() *MemoryPreimageStore {
	return &MemoryPreimageStore{
		data: make(map[string][]byte),
		meta: make(map[string]PreimageMeta),
	}
}

func (self *MemoryPreimageStore) Put(_ context.Context, hash, mediaType string, reader io.Reader, size int64) (meta PreimageMeta, err error) {
	payload, err := readPreimage(hash, reader, size)
	if err != nil {
		return
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()

	if existing, ok := self.meta[hash]; ok {
		meta = existing
		return
	}

	meta = PreimageMeta{
		Hash:      hash,
		MediaType: mediaTypeOrDefault(mediaType),
		Size:      int64(len(payload)),
		CreatedAt: time.Now().UTC(),
	}
	self.data[hash] = payload
	self.meta[hash] = meta
	return
}

func (self *MemoryPreimageStore) Stat(_ context.Context, hash string) (meta PreimageMeta, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	meta, ok := self.meta[hash]
	if !ok {
		err = ErrNotFound
	}
	return
}

func (self *MemoryPreimageStore) Get(_ context.Context, hash string) (reader io.ReadCloser, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	payload, ok := self.data[hash]
	if !ok {
		err = ErrNotFound
		return
	}

	reader = io.NopCloser(bytes.NewReader(payload))
	return
}

// PostgresPreimageStore keeps preimages in the preimages table
type PostgresPreimageStore struct {
	db *gorm.DB
}

func NewPostgresPreimageStore(db *gorm.DB) *PostgresPreimageStore {
	return &PostgresPreimageStore{db: db}
}

func (self *PostgresPreimageStore) Put(ctx context.Context, hash, mediaType string, reader io.Reader, size int64) (meta PreimageMeta, err error) {
	payload, err := readPreimage(hash, reader, size)
	if err != nil {
		return
	}

	row := model.Preimage{
		Hash:      hash,
		MediaType: mediaTypeOrDefault(mediaType),
		Size:      int64(len(payload)),
		Data:      pgtype.Bytea{Bytes: payload, Status: pgtype.Present},
		CreatedAt: time.Now().UTC(),
	}

	result := self.db.WithContext(ctx).
		Table(model.TablePreimage).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		err = result.Error
		return
	}

	// Hash already stored, report what is there
	if result.RowsAffected == 0 {
		return self.Stat(ctx, hash)
	}

	meta = preimageMeta(&row)
	return
}

func (self *PostgresPreimageStore) Stat(ctx context.Context, hash string) (meta PreimageMeta, err error) {
	var row model.Preimage
	err = self.db.WithContext(ctx).
		Table(model.TablePreimage).
		Select("hash", "media_type", "size", "created_at").
		Where("hash = ?", hash).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	if err != nil {
		return
	}

	meta = preimageMeta(&row)
	return
}

func (self *PostgresPreimageStore) Get(ctx context.Context, hash string) (reader io.ReadCloser, err error) {
	var row model.Preimage
	err = self.db.WithContext(ctx).
		Table(model.TablePreimage).
		Where("hash = ?", hash).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	if err != nil {
		return
	}

	reader = io.NopCloser(bytes.NewReader(row.Data.Bytes))
	return
}

func readPreimage(hash string, reader io.Reader, size int64) (payload []byte, err error) {
	if hash == "" {
		err = ValidationError("preimage hash is required")
		return
	}

	payload, err = io.ReadAll(reader)
	if err != nil {
		return
	}

	if size >= 0 && size != int64(len(payload)) {
		err = ValidationError("preimage size mismatch")
	}
	return
}

func mediaTypeOrDefault(mediaType string) string {
	if mediaType == "" {
		return "application/octet-stream"
	}
	return mediaType
}

func preimageMeta(row *model.Preimage) PreimageMeta {
	return PreimageMeta{
		Hash:      row.Hash,
		MediaType: row.MediaType,
		Size:      row.Size,
		CreatedAt: row.CreatedAt,
	}
}
