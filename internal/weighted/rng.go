package weighted

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstract
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// crypto random : default generation method
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (selection batches, tests)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// NextSeed derives a fresh 53-bit seed from src.
func NextSeed(src RandomSource) uint64 {
	if src == nil {
		src = DefaultRNG()
	}
	return uint64(src.Float64() * (1 << 53))
}

// Fixed replays the given values in order, then repeats the last one.
// Useful for pinning rolls to exact boundaries.
type Fixed struct {
	Values []float64
	next   int
}

func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next]
	if f.next < len(f.Values)-1 {
		f.next++
	}
	return v
}
