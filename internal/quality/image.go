// Package quality implements the image quality gate: four per-criterion
// scores (sharpness, contrast, resolution, orientation) combined into a
// weighted overall score, with remediation suggestions on rejection.
package quality

import (
	"image"
	"log/slog"
	"math"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/smalter/autodoc/internal/common"
)

// Score is the outcome of one quality check.
type Score struct {
	Overall     float64  `json:"overall"`
	Sharpness   float64  `json:"sharpness"`
	Contrast    float64  `json:"contrast"`
	Resolution  float64  `json:"resolution"`
	Orientation float64  `json:"orientation"`
	Threshold   float64  `json:"threshold"`
	Passed      bool     `json:"passed"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type Checker struct {
	cfg    common.QualityConfig
	logger *slog.Logger
}

func NewChecker(cfg common.QualityConfig, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinOverall <= 0 {
		cfg.MinOverall = 70
	}
	if cfg.MinResolution <= 0 {
		cfg.MinResolution = 50
	}
	if cfg.MinSharpness <= 0 {
		cfg.MinSharpness = 45
	}
	if cfg.MinContrast <= 0 {
		cfg.MinContrast = 35
	}
	if cfg.MinOrientation <= 0 {
		cfg.MinOrientation = 90
	}
	return &Checker{cfg: cfg, logger: logger}
}

// Check evaluates the image at path. Decode failures yield a zero score
// with a suggestion, never an error: an unreadable image is a rejection,
// not a fault.
func (c *Checker) Check(path string) Score {
	f, err := os.Open(path)
	if err != nil {
		c.logger.Error("quality.open_failed", "path", path, "error", err)
		return c.unreadable()
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		c.logger.Error("quality.decode_failed", "path", path, "error", err)
		return c.unreadable()
	}
	return c.CheckImage(img)
}

// CheckImage evaluates an already decoded image.
func (c *Checker) CheckImage(img image.Image) Score {
	gray, w, h := grayscale(img)

	resolution := scoreResolution(min(w, h))
	sharpness := scoreSharpness(laplacianVariance(gray, w, h))
	contrast := scoreContrast(rmsContrast(gray))
	orientation := scoreOrientation(dominantAngle(gray, w, h))

	overall := sharpness*0.4 + contrast*0.3 + resolution*0.2 + orientation*0.1
	passed := overall >= c.cfg.MinOverall && resolution >= c.cfg.MinResolution

	c.logger.Info("quality.result",
		"overall", round2(overall),
		"sharpness", round2(sharpness),
		"contrast", round2(contrast),
		"resolution", round2(resolution),
		"orientation", round2(orientation),
		"passed", passed)

	var suggestions []string
	if !passed {
		suggestions = c.suggestions(sharpness, contrast, resolution, orientation)
	}
	return Score{
		Overall:     round2(overall),
		Sharpness:   round2(sharpness),
		Contrast:    round2(contrast),
		Resolution:  round2(resolution),
		Orientation: round2(orientation),
		Threshold:   c.cfg.MinOverall,
		Passed:      passed,
		Suggestions: suggestions,
	}
}

func (c *Checker) unreadable() Score {
	return Score{
		Threshold:   c.cfg.MinOverall,
		Suggestions: []string{"Fichier image corrompu ou illisible."},
	}
}

// resolutionHintFloor is above the pass threshold on purpose: the 300 DPI
// hint stays useful on borderline scans that still clear the gate.
const resolutionHintFloor = 75

func (c *Checker) suggestions(sharpness, contrast, resolution, orientation float64) []string {
	var out []string
	if sharpness < c.cfg.MinSharpness {
		out = append(out, "Image floue détectée : utilisez un scanner, stabilisez l'appareil photo ou activez la mise au point automatique.")
	}
	if contrast < c.cfg.MinContrast {
		out = append(out, "Contraste insuffisant : améliorez l'éclairage, évitez les contre-jours, utilisez le flash en intérieur.")
	}
	if resolution < resolutionHintFloor {
		out = append(out, "Résolution trop faible : scannez à 300 DPI minimum ou photographiez de plus près.")
	}
	if orientation < c.cfg.MinOrientation {
		out = append(out, "Document mal orienté : redressez le document avant la photo ou le scan.")
	}
	return out
}

// scoreResolution maps the smaller image dimension against A4 scan sizes:
// 2480px is 300 DPI, 2067px is 250 DPI, 1654px is 200 DPI.
func scoreResolution(minDim int) float64 {
	d := float64(minDim)
	switch {
	case d >= 2480:
		return 100
	case d >= 2067:
		return 85 + (d-2067)/(2480-2067)*15
	case d >= 1654:
		return 50 + (d-1654)/(2067-1654)*35
	default:
		return math.Max(0, d/1654*50)
	}
}

// scoreSharpness maps the variance of the Laplacian. A sharp scan has many
// edges and a high variance, a blurry one does not.
func scoreSharpness(variance float64) float64 {
	switch {
	case variance >= 180:
		return 100
	case variance >= 40:
		return clamp(30 + (variance-40)/140*70)
	default:
		return clamp(variance / 40 * 30)
	}
}

// scoreContrast maps the RMS contrast of the grayscale plane.
func scoreContrast(rms float64) float64 {
	switch {
	case rms >= 55:
		return 100
	case rms >= 25:
		return clamp(40 + (rms-25)/30*60)
	default:
		return clamp(rms / 25 * 40)
	}
}

// scoreOrientation maps the mean angle of the dominant straight lines.
// When fewer than five strong lines exist the page is assumed straight.
func scoreOrientation(meanAngle float64, enoughLines bool) float64 {
	if !enoughLines {
		return 100
	}
	a := math.Abs(meanAngle)
	switch {
	case a <= 3:
		return 100
	case a <= 12:
		return 100 - (a-3)/9*70
	default:
		return math.Max(0, 30-(a-12)*5)
	}
}

func grayscale(img image.Image) ([]float64, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// 16-bit channels scaled down to 0..255 luma
			gray[y*w+x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 257.0
		}
	}
	return gray, w, h
}

// laplacianVariance applies the 4-neighbor Laplacian kernel over interior
// pixels and returns the variance of the response.
func laplacianVariance(gray []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	n := 0
	var sum, sumSq float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := gray[(y-1)*w+x] + gray[(y+1)*w+x] + gray[y*w+x-1] + gray[y*w+x+1] - 4*gray[y*w+x]
			sum += lap
			sumSq += lap * lap
			n++
		}
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

func rmsContrast(gray []float64) float64 {
	if len(gray) == 0 {
		return 0
	}
	var sum float64
	for _, v := range gray {
		sum += v
	}
	mean := sum / float64(len(gray))
	var sq float64
	for _, v := range gray {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(gray)))
}

const (
	houghVoteThreshold = 200
	houghMaxLines      = 20
	edgeThreshold      = 128
)

// dominantAngle runs a coarse Hough transform over Sobel edges and returns
// the mean deviation from horizontal of the strongest lines. enoughLines is
// false when fewer than five lines clear the vote threshold.
func dominantAngle(gray []float64, w, h int) (meanAngle float64, enoughLines bool) {
	if w < 3 || h < 3 {
		return 0, false
	}

	diag := int(math.Ceil(math.Sqrt(float64(w*w + h*h))))
	const thetaSteps = 180
	acc := make([]int, thetaSteps*(2*diag+1))

	sinT := make([]float64, thetaSteps)
	cosT := make([]float64, thetaSteps)
	for t := 0; t < thetaSteps; t++ {
		rad := float64(t) * math.Pi / 180
		sinT[t] = math.Sin(rad)
		cosT[t] = math.Cos(rad)
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := gray[(y-1)*w+x+1] + 2*gray[y*w+x+1] + gray[(y+1)*w+x+1] -
				gray[(y-1)*w+x-1] - 2*gray[y*w+x-1] - gray[(y+1)*w+x-1]
			gy := gray[(y+1)*w+x-1] + 2*gray[(y+1)*w+x] + gray[(y+1)*w+x+1] -
				gray[(y-1)*w+x-1] - 2*gray[(y-1)*w+x] - gray[(y-1)*w+x+1]
			if math.Sqrt(gx*gx+gy*gy) < edgeThreshold {
				continue
			}
			for t := 0; t < thetaSteps; t++ {
				rho := int(math.Round(float64(x)*cosT[t] + float64(y)*sinT[t]))
				acc[t*(2*diag+1)+rho+diag]++
			}
		}
	}

	type line struct {
		votes int
		theta int
	}
	var lines []line
	for t := 0; t < thetaSteps; t++ {
		for r := 0; r <= 2*diag; r++ {
			if v := acc[t*(2*diag+1)+r]; v >= houghVoteThreshold {
				lines = append(lines, line{votes: v, theta: t})
			}
		}
	}
	if len(lines) < 5 {
		return 0, false
	}

	// strongest lines first
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && lines[j].votes > lines[j-1].votes; j-- {
			lines[j], lines[j-1] = lines[j-1], lines[j]
		}
	}
	if len(lines) > houghMaxLines {
		lines = lines[:houghMaxLines]
	}

	var sum float64
	for _, l := range lines {
		sum += float64(l.theta) - 90
	}
	return sum / float64(len(lines)), true
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
