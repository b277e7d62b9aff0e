package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smalter/autodoc/internal/common"
)

type stubRunner struct {
	outputs map[string][]byte // keyed by last arg ("stdout" run vs "tsv" run)
	err     error
	errOn   string // last arg that should fail; empty fails every run
	calls   [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	last := args[len(args)-1]
	if s.err != nil && (s.errOn == "" || s.errOn == last) {
		return nil, []byte("boom"), s.err
	}
	return s.outputs[last], nil, nil
}

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t40\t12\t96\tFACTURE\n" +
	"5\t1\t1\t1\t1\t2\t60\t10\t40\t12\t88\tTOTAL\n" +
	"5\t1\t1\t1\t1\t3\t110\t10\t40\t12\t72\t120,00\n"

func TestRecognizeParsesConfColumn(t *testing.T) {
	stub := &stubRunner{outputs: map[string][]byte{
		"stdout": []byte("FACTURE TOTAL 120,00\n"),
		"tsv":    []byte(sampleTSV),
	}}
	e := NewEngine(common.OCRConfig{TesseractLang: "fra", PSM: 6, OEM: 3}, nil)
	e.runner = stub

	rec, err := e.Recognize(context.Background(), "/tmp/page.jpg")
	require.NoError(t, err)
	assert.Equal(t, "FACTURE TOTAL 120,00\n", rec.Text)
	// the -1 layout row is skipped, conf comes from column 10
	assert.Equal(t, []float64{96, 88, 72}, rec.Confidences)

	require.Len(t, stub.calls, 2)
	first := strings.Join(stub.calls[0], " ")
	assert.Contains(t, first, "-l fra")
	assert.Contains(t, first, "--psm 6")
	assert.Contains(t, first, "--oem 3")
	assert.Equal(t, "tsv", stub.calls[1][len(stub.calls[1])-1])
}

func TestRecognizeTextPassFailure(t *testing.T) {
	e := NewEngine(common.OCRConfig{}, nil)
	e.runner = &stubRunner{err: errors.New("exit status 1")}

	_, err := e.Recognize(context.Background(), "/tmp/page.jpg")
	assert.Error(t, err)
}

// A failed TSV pass degrades to an unscored recognition instead of failing
// the extraction.
func TestRecognizeTSVFailureDegrades(t *testing.T) {
	stub := &stubRunner{
		outputs: map[string][]byte{"stdout": []byte("texte reconnu")},
		err:     errors.New("exit status 1"),
		errOn:   "tsv",
	}
	e := NewEngine(common.OCRConfig{}, nil)
	e.runner = stub

	rec, err := e.Recognize(context.Background(), "/tmp/page.jpg")
	require.NoError(t, err)
	assert.Equal(t, "texte reconnu", rec.Text)
	assert.Empty(t, rec.Confidences)
}
