package quality

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smalter/autodoc/internal/common"
)

func TestScoreResolutionCurve(t *testing.T) {
	cases := []struct {
		minDim int
		want   float64
	}{
		{2480, 100},  // 300 DPI A4
		{3000, 100},  // above 300 DPI caps at 100
		{2067, 85},   // 250 DPI
		{1654, 50},   // 200 DPI, the pass floor
		{827, 25},    // half of 200 DPI
		{0, 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, scoreResolution(tc.minDim), 1e-9, "minDim=%d", tc.minDim)
	}
}

func TestScoreSharpnessCurve(t *testing.T) {
	assert.InDelta(t, 100, scoreSharpness(180), 1e-9)
	assert.InDelta(t, 100, scoreSharpness(500), 1e-9)
	assert.InDelta(t, 30, scoreSharpness(40), 1e-9)
	assert.InDelta(t, 65, scoreSharpness(110), 1e-9)
	assert.InDelta(t, 15, scoreSharpness(20), 1e-9)
	assert.InDelta(t, 0, scoreSharpness(0), 1e-9)
}

func TestScoreContrastCurve(t *testing.T) {
	assert.InDelta(t, 100, scoreContrast(55), 1e-9)
	assert.InDelta(t, 40, scoreContrast(25), 1e-9)
	assert.InDelta(t, 70, scoreContrast(40), 1e-9)
	assert.InDelta(t, 20, scoreContrast(12.5), 1e-9)
}

func TestScoreOrientationCurve(t *testing.T) {
	assert.InDelta(t, 100, scoreOrientation(0, false), 1e-9) // too few lines, assume straight
	assert.InDelta(t, 100, scoreOrientation(2, true), 1e-9)
	assert.InDelta(t, 100, scoreOrientation(-3, true), 1e-9)
	assert.InDelta(t, 65, scoreOrientation(7.5, true), 1e-9)
	assert.InDelta(t, 30, scoreOrientation(12, true), 1e-9)
	assert.InDelta(t, 0, scoreOrientation(20, true), 1e-9)
}

// A tiny sharp checkerboard maxes sharpness and contrast but is far below
// scan resolution, so the resolution floor must reject it.
func TestCheckRejectsLowResolution(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x/8+y/8)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	path := filepath.Join(t.TempDir(), "checker.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	c := NewChecker(common.QualityConfig{MinOverall: 70, MinResolution: 50, MinSharpness: 45, MinContrast: 35}, nil)
	score := c.Check(path)

	assert.InDelta(t, 100, score.Sharpness, 1e-6)
	assert.InDelta(t, 100, score.Contrast, 1e-6)
	assert.Less(t, score.Resolution, 50.0)
	assert.False(t, score.Passed)
	require.Len(t, score.Suggestions, 1)
	assert.Contains(t, score.Suggestions[0], "Résolution")
}

func TestCheckUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	c := NewChecker(common.QualityConfig{MinOverall: 70, MinResolution: 50}, nil)
	score := c.Check(path)

	assert.False(t, score.Passed)
	assert.Zero(t, score.Overall)
	assert.NotEmpty(t, score.Suggestions)

	score = c.Check(filepath.Join(dir, "missing.png"))
	assert.False(t, score.Passed)
}

func TestSuggestionsHonorConfiguredThresholds(t *testing.T) {
	// defaults: sharpness 45, contrast 35, orientation 90
	c := NewChecker(common.QualityConfig{}, nil)
	out := c.suggestions(100, 100, 100, 65)
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "orienté")

	relaxed := NewChecker(common.QualityConfig{MinOrientation: 50}, nil)
	assert.Empty(t, relaxed.suggestions(100, 100, 100, 65))

	strict := NewChecker(common.QualityConfig{MinSharpness: 80, MinContrast: 60}, nil)
	out = strict.suggestions(70, 50, 100, 95)
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "floue")
	assert.Contains(t, out[1], "Contraste")
}
