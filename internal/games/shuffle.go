package games

import (
	"math/rand"
	"time"
)

// Shuffler reorders n items in place through swap, with the same contract as
// rand.Shuffle. Banks are shuffled exactly once, when a game is created.
type Shuffler func(n int, swap func(i, j int))

// Identity leaves the order untouched.
func Identity(int, func(i, j int)) {}

// Seeded returns a deterministic shuffler.
func Seeded(seed int64) Shuffler {
	rng := rand.New(rand.NewSource(seed))
	return rng.Shuffle
}

// Random returns a shuffler seeded from the clock, so each session sees a
// different order.
func Random() Shuffler {
	return Seeded(time.Now().UnixNano())
}

func shuffled[T any](items []T, shuffle Shuffler) []T {
	out := make([]T, len(items))
	copy(out, items)
	if shuffle == nil {
		shuffle = Random()
	}
	shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
