// Package random abstracts the randomness consumed by the simulation.
//
// Two providers exist. Default draws from the process-wide math/rand/v2
// source and is not reproducible. Seeded is a 32-bit linear-congruential
// generator:
//
//	state = (state*1664525 + 1013904223) mod 2^32
//	value = state / 2^32
//
// Seeded must stay bit-exact: regression scenarios and balance batches
// depend on the precise sequence it produces for a given seed.
//
// # Determinism
//
// Two Seeded providers built from the same seed produce the same sequence
// of Random, RandomInt, Pick and Shuffle results, provided the calls are
// made in the same order.
package random
