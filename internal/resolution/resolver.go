// Package resolution turns an aspect-ratio token and a square-equivalent base
// size into pixel dimensions that image models accept.
package resolution

import (
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultBaseSize is used when a base size is missing or not positive.
	DefaultBaseSize = 1024
	// DefaultRatio is the token unknown ratios fall back to.
	DefaultRatio = "1:1"

	alignment = 8
)

type ratio struct {
	w, h float64
}

var ratios = map[string]ratio{
	"1:1":  {1, 1},
	"4:3":  {4, 3},
	"3:4":  {3, 4},
	"16:9": {16, 9},
	"9:16": {9, 16},
	"2:3":  {2, 3},
	"3:2":  {3, 2},
	"21:9": {21, 9},
	"9:21": {9, 21},
}

// Resolve maps ratio and baseSize to a width and height that are both positive
// multiples of 8 and whose product stays close to baseSize². Unknown ratios
// behave like "1:1".
func Resolve(token string, baseSize int) (width, height int) {
	r, ok := ratios[token]
	if !ok {
		r = ratios[DefaultRatio]
	}
	if baseSize <= 0 {
		baseSize = DefaultBaseSize
	}

	total := float64(baseSize) * float64(baseSize)
	scale := math.Sqrt(total / (r.w * r.h))

	return align(r.w * scale), align(r.h * scale)
}

// Supported reports whether token is in the ratio table.
func Supported(token string) bool {
	_, ok := ratios[token]
	return ok
}

// ParseBaseSize reads a resolution preset value such as "2048".
func ParseBaseSize(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return DefaultBaseSize
	}
	return n
}

// align rounds to the nearest multiple of 8; tiny inputs are clamped to 8 so
// the result is never zero.
func align(v float64) int {
	n := int(math.Round(v/alignment)) * alignment
	if n < alignment {
		return alignment
	}
	return n
}
