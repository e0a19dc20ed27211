package ledger

import (
	"bytes"
	"context"
	"io"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"testing"
)

func TestPreimageTestSuite(t *testing.T) {
	suite.Run(t, new(PreimageTestSuite))
}

type PreimageTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *MemoryPreimageStore
}

func (s *PreimageTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryPreimageStore()
}

func (s *PreimageTestSuite) TestPutStatGet() {
	payload := []byte("preimage payload")

	meta, err := s.store.Put(s.ctx, "hash-1", "text/plain", bytes.NewReader(payload), int64(len(payload)))
	require.Nil(s.T(), err)
	require.Equal(s.T(), "hash-1", meta.Hash)
	require.Equal(s.T(), "text/plain", meta.MediaType)
	require.Equal(s.T(), int64(len(payload)), meta.Size)
	require.False(s.T(), meta.CreatedAt.IsZero())

	stat, err := s.store.Stat(s.ctx, "hash-1")
	require.Nil(s.T(), err)
	require.Equal(s.T(), meta, stat)

	reader, err := s.store.Get(s.ctx, "hash-1")
	require.Nil(s.T(), err)
	defer reader.Close()
	read, err := io.ReadAll(reader)
	require.Nil(s.T(), err)
	require.Equal(s.T(), payload, read)
}

func (s *PreimageTestSuite) TestNotFound() {
	_, err := s.store.Stat(s.ctx, "missing")
	require.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.store.Get(s.ctx, "missing")
	require.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *PreimageTestSuite) TestPutIsIdempotent() {
	first, err := s.store.Put(s.ctx, "hash-1", "text/plain", bytes.NewReader([]byte("original")), 8)
	require.Nil(s.T(), err)

	// Second write under the same hash changes nothing
	second, err := s.store.Put(s.ctx, "hash-1", "application/json", bytes.NewReader([]byte("other")), 5)
	require.Nil(s.T(), err)
	require.Equal(s.T(), first, second)

	reader, err := s.store.Get(s.ctx, "hash-1")
	require.Nil(s.T(), err)
	defer reader.Close()
	read, err := io.ReadAll(reader)
	require.Nil(s.T(), err)
	require.Equal(s.T(), []byte("original"), read)
}

func (s *PreimageTestSuite) TestPutValidation() {
	var verr ValidationError

	_, err := s.store.Put(s.ctx, "", "text/plain", bytes.NewReader([]byte("x")), 1)
	require.ErrorAs(s.T(), err, &verr)

	_, err = s.store.Put(s.ctx, "hash-1", "text/plain", bytes.NewReader([]byte("xy")), 5)
	require.ErrorAs(s.T(), err, &verr)

	// Negative size means unknown
	meta, err := s.store.Put(s.ctx, "hash-2", "", bytes.NewReader([]byte("xy")), -1)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(2), meta.Size)
	require.Equal(s.T(), "application/octet-stream", meta.MediaType)
}
