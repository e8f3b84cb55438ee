package selection

import (
	crand "crypto/rand"
	"math/big"
	"math/rand/v2"
	"sync"
)

// RNG is the source of randomness used for draws.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// secureRNG draws from crypto/rand.
type secureRNG struct{}

func (secureRNG) Intn(n int) int {
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return rand.IntN(n)
	}
	return int(v.Int64())
}

// SecureRNG returns the default crypto-backed RNG.
func SecureRNG() RNG { return secureRNG{} }

// seededRNG is a reproducible PCG stream, safe for concurrent use.
type seededRNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRNG returns a deterministic RNG for tests and replays.
func NewSeededRNG(seed uint64) RNG {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededRNG) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}
