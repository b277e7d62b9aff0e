package ocr

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecRunnerCapturesStdout(t *testing.T) {
	r := execRunner{logger: discardLogger()}

	stdout, stderr, err := r.Run(context.Background(), "echo", "bonjour")
	require.NoError(t, err)
	assert.Equal(t, "bonjour\n", string(stdout))
	assert.Empty(t, stderr)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := execRunner{logger: discardLogger()}

	_, _, err := r.Run(context.Background(), "tesseract-introuvable-xyz")
	assert.Error(t, err)
}

func TestTruncateCapsLongOutput(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab...(truncated)", truncate("abcdef", 2))
}
