package nk

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	WiringIsolated = "isolated"
	WiringRing     = "ring"
	WiringRandom   = "random"
	WiringComplete = "complete"
	WiringStar     = "star"
)

// CompleteWiring gives node i every other index in ascending order.
func CompleteWiring(size int) Wiring {
	wiring := make(Wiring, size)
	for i := range wiring {
		others := make([]int, 0, size-1)
		for j := 0; j < size; j++ {
			if j != i {
				others = append(others, j)
			}
		}
		wiring[i] = others
	}
	return wiring
}

// RingWiring gives node i the next k indices i+1..i+k. Indices are left
// unreduced; evaluation wraps them around the ring.
func RingWiring(size, k int) (Wiring, error) {
	if err := checkK(size, k); err != nil {
		return nil, err
	}
	wiring := make(Wiring, size)
	for i := range wiring {
		others := make([]int, 0, k)
		for j := 1; j <= k; j++ {
			others = append(others, i+j)
		}
		wiring[i] = others
	}
	return wiring, nil
}

// RandomWiring gives each node k distinct other nodes chosen uniformly,
// listed in ascending order.
func RandomWiring(size, k int, rng *rand.Rand) (Wiring, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidWiring)
	}
	if err := checkK(size, k); err != nil {
		return nil, err
	}
	wiring := make(Wiring, size)
	for i := range wiring {
		candidates := make([]int, 0, size-1)
		for j := 0; j < size; j++ {
			if j != i {
				candidates = append(candidates, j)
			}
		}
		rng.Shuffle(len(candidates), func(a, b int) {
			candidates[a], candidates[b] = candidates[b], candidates[a]
		})
		picked := append([]int(nil), candidates[:k]...)
		sort.Ints(picked)
		wiring[i] = picked
	}
	return wiring, nil
}

// StarWiring feeds the hub into every node. The hub's own entry collapses
// to just its id.
func StarWiring(size, hub int) (Wiring, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNetworkSize, size)
	}
	if hub < 0 || hub >= size {
		return nil, fmt.Errorf("%w: hub %d not in [0, %d)", ErrNodeIndexOutOfRange, hub, size)
	}
	wiring := make(Wiring, size)
	for i := range wiring {
		wiring[i] = []int{hub}
	}
	return wiring, nil
}

// WiringFromName builds one of the named wiring layouts. k is the number of
// epistatic inputs per node for ring and random layouts and the hub index
// for star.
func WiringFromName(name string, size, k int, rng *rand.Rand) (Wiring, error) {
	switch name {
	case "", WiringIsolated:
		return Wiring{}, nil
	case WiringRing:
		return RingWiring(size, k)
	case WiringRandom:
		return RandomWiring(size, k, rng)
	case WiringComplete:
		return CompleteWiring(size), nil
	case WiringStar:
		return StarWiring(size, k)
	default:
		return nil, fmt.Errorf("%w: unsupported layout %q", ErrInvalidWiring, name)
	}
}

func checkK(size, k int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidNetworkSize, size)
	}
	if k < 0 || k > size-1 {
		return fmt.Errorf("%w: k=%d must be in [0, %d]", ErrInvalidWiring, k, size-1)
	}
	return nil
}
