package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// mix64 is the SplitMix64 finalizer, used here as an avalanche hash.
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// subSeed derives the seed for one stochastic slot from the run seed,
// the generation number, and the slot's index in the population. The
// derivation depends on nothing else (no clock, no goroutine identity),
// so runs are bit-reproducible for any worker count.
func subSeed(seed uint64, generation, slot int) uint64 {
	h := mix64(seed)
	h = mix64(h ^ uint64(generation))
	return mix64(h ^ uint64(slot))
}

// slotRand returns the random source for one population slot of one
// generation.
func slotRand(seed uint64, generation, slot int) *rand.Rand {
	return rand.New(rand.NewSource(int64(subSeed(seed, generation, slot))))
}

// entropySeed draws a fresh top-level seed. Used once per run when the
// caller supplies no seed.
func entropySeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
