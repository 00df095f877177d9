package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionedRNG_StreamsAreDeterministic(t *testing.T) {
	a := NewPartitionedRNG(42)
	b := NewPartitionedRNG(42)

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Stream(StreamTopology).Int63(), b.Stream(StreamTopology).Int63())
	}
}

func TestPartitionedRNG_StreamsAreIndependent(t *testing.T) {
	rngs := NewPartitionedRNG(42)
	topo := rngs.Stream(StreamTopology).Int63()
	traffic := rngs.Stream(StreamTraffic).Int63()
	assert.NotEqual(t, topo, traffic, "distinct streams must not be perturbed by sharing a master seed")
}

func TestPartitionedRNG_StreamIsCached(t *testing.T) {
	rngs := NewPartitionedRNG(1)
	first := rngs.Stream(StreamPolicy)
	second := rngs.Stream(StreamPolicy)
	assert.Same(t, first, second, "repeated Stream calls for the same name must return the same generator")
}

func TestPartitionedRNG_SeedForMatchesStreamDerivation(t *testing.T) {
	rngs := NewPartitionedRNG(7)
	seed := rngs.SeedFor(StreamPolicy)
	assert.Equal(t, rngs.masterSeed^fnv1a64(StreamPolicy), seed)
}

func TestPartitionedRNG_DifferentMasterSeedsDiverge(t *testing.T) {
	a := NewPartitionedRNG(1)
	b := NewPartitionedRNG(2)
	assert.NotEqual(t, a.Stream(StreamTopology).Int63(), b.Stream(StreamTopology).Int63())
}
