package classify

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smalter/autodoc/constants"
)

func TestDetectImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 40, 30))))
	require.NoError(t, f.Close())

	res := NewClassifier(nil).Detect(path)
	assert.Equal(t, constants.FileClassImage, res.Class)
	assert.Equal(t, 40, res.Metadata["width"])
	assert.Equal(t, 30, res.Metadata["height"])
	assert.Equal(t, "png", res.Metadata["format"])
}

// The filename never decides: a .pdf full of garbage is unsupported.
func TestDetectUnsupportedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "document.pdf")
	require.NoError(t, os.WriteFile(path, []byte("ceci n'est pas un pdf"), 0o644))

	res := NewClassifier(nil).Detect(path)
	assert.Equal(t, constants.FileClassUnsupported, res.Class)
}

// A PDF magic header over a broken body classifies as unsupported with the
// parse error in the metadata.
func TestDetectBrokenPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\ngarbage"), 0o644))

	res := NewClassifier(nil).Detect(path)
	assert.Equal(t, constants.FileClassUnsupported, res.Class)
	assert.Contains(t, res.Metadata, "error")
}

func TestDetectMissingFile(t *testing.T) {
	res := NewClassifier(nil).Detect(filepath.Join(t.TempDir(), "absent.bin"))
	assert.Equal(t, constants.FileClassUnsupported, res.Class)
	assert.Contains(t, res.Metadata, "error")
}

func TestTextRatioThresholdConstant(t *testing.T) {
	assert.InDelta(t, 0.10, nativeTextRatio, 1e-9)
}
