package resolution

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Square(t *testing.T) {
	w, h := Resolve("1:1", 1024)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 1024, h)
}

func TestResolve_Widescreen(t *testing.T) {
	w, h := Resolve("16:9", 1024)
	assert.Equal(t, 1368, w)
	assert.Equal(t, 768, h)

	pixels := float64(w * h)
	assert.InDelta(t, 1024*1024, pixels, 1024*1024*0.01)
}

func TestResolve_KnownValues(t *testing.T) {
	tests := []struct {
		ratio string
		base  int
		wantW int
		wantH int
	}{
		{"9:16", 1024, 768, 1368},
		{"4:3", 1024, 1184, 888},
		{"3:4", 1024, 888, 1184},
		{"1:1", 2048, 2048, 2048},
		{"21:9", 1024, 1568, 672},
	}

	for _, tt := range tests {
		t.Run(tt.ratio, func(t *testing.T) {
			w, h := Resolve(tt.ratio, tt.base)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestResolve_UnknownRatioMatchesSquare(t *testing.T) {
	for _, base := range []int{64, 512, 1024, 1337, 4096} {
		w, h := Resolve("7:5", base)
		sw, sh := Resolve("1:1", base)
		assert.Equal(t, sw, w)
		assert.Equal(t, sh, h)
	}

	w, h := Resolve("", 1024)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 1024, h)
}

func TestResolve_AlwaysPositiveMultipleOfEight(t *testing.T) {
	for _, p := range AspectRatios() {
		require.True(t, Supported(p.Value), p.Value)
		for base := 1; base <= 4096; base += 7 {
			w, h := Resolve(p.Value, base)
			if w <= 0 || h <= 0 || w%8 != 0 || h%8 != 0 {
				t.Fatalf("Resolve(%q, %d) = %dx%d, want positive multiples of 8", p.Value, base, w, h)
			}
		}
	}
}

func TestResolve_PreservesAspect(t *testing.T) {
	w, h := Resolve("3:2", 2048)
	assert.InDelta(t, 1.5, float64(w)/float64(h), 0.01)
	assert.InDelta(t, 2048.0, math.Sqrt(float64(w*h)), 8)
}

func TestResolve_NonPositiveBase(t *testing.T) {
	w, h := Resolve("1:1", 0)
	assert.Equal(t, DefaultBaseSize, w)
	assert.Equal(t, DefaultBaseSize, h)
}

func TestParseBaseSize(t *testing.T) {
	assert.Equal(t, 2048, ParseBaseSize("2048"))
	assert.Equal(t, 4096, ParseBaseSize(" 4096 "))
	assert.Equal(t, DefaultBaseSize, ParseBaseSize("4K"))
	assert.Equal(t, DefaultBaseSize, ParseBaseSize("-1"))
	assert.Equal(t, DefaultBaseSize, ParseBaseSize(""))
}

func TestPresets(t *testing.T) {
	assert.Len(t, AspectRatios(), 9)
	assert.Len(t, Resolutions(), 3)
	assert.Equal(t, 30, StepPresets()[1].Value)
}
