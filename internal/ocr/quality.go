package ocr

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// QualityScore grades one OCR pass. Overall blends Tesseract's own
// confidence with a parasite-symbol check and a common-word vote.
type QualityScore struct {
	Overall         float64 `json:"overall"`
	Confidence      float64 `json:"confidence"`
	RecognitionRate float64 `json:"recognition_rate"`
	TextCoherence   float64 `json:"text_coherence"`
	Threshold       float64 `json:"threshold"`
	Passed          bool    `json:"passed"`
}

var parasiteRe = regexp.MustCompile(`#{3,}|\*{3,}|\|{3,}`)

// commonWords is a small lexicon of French words expected in any financial
// document; their presence signals the OCR produced language, not noise.
var commonWords = []string{
	"le", "la", "de", "et", "un", "une", "du", "des",
	"total", "montant", "date", "facture", "client",
	"fournisseur", "ttc", "tva", "ht",
}

// ScoreQuality grades a recognition against the acceptance threshold. No
// scored words at all means the OCR failed outright.
func ScoreQuality(rec Recognition, threshold float64) QualityScore {
	if len(rec.Confidences) == 0 {
		return QualityScore{Threshold: threshold, Passed: false}
	}

	var sum float64
	highConf := 0
	for _, c := range rec.Confidences {
		sum += c
		if c >= 80 {
			highConf++
		}
	}
	avg := sum / float64(len(rec.Confidences))
	highRatio := float64(highConf) / float64(len(rec.Confidences))
	confidence := avg*0.7 + highRatio*100*0.3

	recognition := recognitionRate(rec.Text)
	coherence := coherenceScore(rec.Text)

	overall := confidence*0.4 + recognition*0.4 + coherence*0.2
	return QualityScore{
		Overall:         round2(overall),
		Confidence:      round2(confidence),
		RecognitionRate: round2(recognition),
		TextCoherence:   round2(coherence),
		Threshold:       threshold,
		Passed:          overall >= threshold,
	}
}

// recognitionRate is the alphanumeric share of the text, penalized for
// parasite runs (###, ***, |||) that betray misread table rules.
func recognitionRate(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	alnum := 0
	total := 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			alnum++
		}
	}
	parasites := len(parasiteRe.FindAllString(text, -1))
	rate := float64(alnum)/float64(total)*100 - math.Min(30, float64(parasites)*10)
	return math.Max(0, rate)
}

func coherenceScore(text string) float64 {
	textLower := strings.ToLower(text)
	found := 0
	for _, w := range commonWords {
		if strings.Contains(textLower, w) {
			found++
		}
	}
	return float64(found) / float64(len(commonWords)) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
