package hasher

import (
	"crypto/sha256"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

const DefaultAlgorithm = "blake3-256"

// Named digest strategy. Used to derive accumulator roots and metadata
// hashes, swappable through configuration.
type Hasher interface {
	Name() string
	Sum(data []byte) []byte
}

type hashFunc struct {
	name string
	sum  func(data []byte) []byte
}

func (self *hashFunc) Name() string {
	return self.name
}

func (self *hashFunc) Sum(data []byte) []byte {
	return self.sum(data)
}

// New wraps a plain digest function, mostly useful in tests
func New(name string, sum func(data []byte) []byte) Hasher {
	return &hashFunc{name: name, sum: sum}
}

var algorithms = map[string]Hasher{
	"blake3-256": New("blake3-256", func(data []byte) []byte {
		sum := blake3.Sum256(data)
		return sum[:]
	}),
	"sha256": New("sha256", func(data []byte) []byte {
		sum := sha256.Sum256(data)
		return sum[:]
	}),
	"blake2b-256": New("blake2b-256", func(data []byte) []byte {
		sum := blake2b.Sum256(data)
		return sum[:]
	}),
	"sha3-256": New("sha3-256", func(data []byte) []byte {
		sum := sha3.Sum256(data)
		return sum[:]
	}),
	"keccak-256": New("keccak-256", func(data []byte) []byte {
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		return h.Sum(nil)
	}),
}

// Get resolves a configured name, falling back to the default algorithm
func Get(name string) Hasher {
	return algorithms[Normalize(name)]
}

func Default() Hasher {
	return algorithms[DefaultAlgorithm]
}

// Normalize folds the configured name to a registered algorithm,
// unknown or empty names resolve to the default
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultAlgorithm
	}
	if _, ok := algorithms[name]; !ok {
		return DefaultAlgorithm
	}
	return name
}
