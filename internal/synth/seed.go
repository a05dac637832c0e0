// Package synth derives reproducible synthetic price histories from ticker
// symbols. Every function here is pure: the only external input is the clock
// that pins the end of the lookback window.
package synth

import (
	"unicode/utf16"

	"helios/internal/domain"
)

const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619

	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
)

// SeedFrom folds sym into a 32-bit FNV-1a hash over its UTF-16 code units.
func SeedFrom(sym domain.Symbol) uint32 {
	h := fnvOffsetBasis
	for _, unit := range utf16.Encode([]rune(string(sym))) {
		h ^= uint32(unit)
		h *= fnvPrime
	}
	return h
}

// Next advances a linear-congruential state by one step (mod 2^32).
func Next(state uint32) uint32 {
	return state*lcgMultiplier + lcgIncrement
}

// Noise maps an LCG state to a centred value in [-0.5, 0.5).
func Noise(state uint32) float64 {
	return float64(state)/4294967296 - 0.5
}
