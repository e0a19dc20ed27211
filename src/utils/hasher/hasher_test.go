package hasher

import (
	"encoding/hex"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"testing"
)

func TestHasherTestSuite(t *testing.T) {
	suite.Run(t, new(HasherTestSuite))
}

type HasherTestSuite struct {
	suite.Suite
}

func (s *HasherTestSuite) TestNormalize() {
	require.Equal(s.T(), DefaultAlgorithm, Normalize(""))
	require.Equal(s.T(), DefaultAlgorithm, Normalize("  "))
	require.Equal(s.T(), DefaultAlgorithm, Normalize("whirlpool"))
	require.Equal(s.T(), "sha256", Normalize(" SHA256 "))
	require.Equal(s.T(), "blake3-256", Normalize("blake3-256"))
}

func (s *HasherTestSuite) TestGetResolves() {
	h := Get("sha256")
	require.Equal(s.T(), "sha256", h.Name())

	// Unknown names fall back to the default
	h = Get("no-such-algorithm")
	require.Equal(s.T(), DefaultAlgorithm, h.Name())

	require.Equal(s.T(), DefaultAlgorithm, Default().Name())
}

func (s *HasherTestSuite) TestKnownVectors() {
	input := []byte("abc")

	require.Equal(s.T(),
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		hex.EncodeToString(Get("sha256").Sum(input)))

	require.Equal(s.T(),
		"3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532",
		hex.EncodeToString(Get("sha3-256").Sum(input)))

	require.Equal(s.T(),
		"4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		hex.EncodeToString(Get("keccak-256").Sum(input)))
}

func (s *HasherTestSuite) TestAllAlgorithmsProduce32Bytes() {
	input := []byte("payload")
	for _, name := range []string{"blake3-256", "sha256", "blake2b-256", "sha3-256", "keccak-256"} {
		h := Get(name)
		require.Equal(s.T(), name, h.Name())
		require.Len(s.T(), h.Sum(input), 32, name)

		// Deterministic per algorithm
		require.Equal(s.T(), h.Sum(input), h.Sum(input), name)
	}

	// No two algorithms agree on the same input
	require.NotEqual(s.T(), Get("blake3-256").Sum(input), Get("sha256").Sum(input))
	require.NotEqual(s.T(), Get("sha3-256").Sum(input), Get("keccak-256").Sum(input))
}
