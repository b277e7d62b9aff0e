package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/smalter/autodoc/internal/common"
)

// HardProtectedFields are never delegated to the generative backend: a
// hallucinated amount or identifier is worse than a missing one.
var HardProtectedFields = map[string]struct{}{
	"montant_ttc":   {},
	"montant_ht":    {},
	"tva_rates":     {},
	"siret":         {},
	"siren":         {},
	"iban":          {},
	"bic":           {},
	"solde_initial": {},
	"solde_final":   {},
}

// SoftProtectedFields may go to the backend as a last resort, behind a
// policy flag.
var SoftProtectedFields = map[string]struct{}{
	"numero_facture": {},
	"date_facture":   {},
}

const promptTextLimit = 1500

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// responseSchema only pins the shape we can work with: a JSON object.
// Nested values are flattened afterwards rather than rejected.
var responseSchema = jsonschema.MustCompileString("llm-response.json", `{"type": "object"}`)

// SemanticExtractor completes missing non-protected fields through a local
// Ollama-style generative backend. Every failure mode (backend down,
// timeout, malformed JSON) yields an empty result, never an error.
type SemanticExtractor struct {
	cfg    common.LLMConfig
	client *http.Client
	logger *slog.Logger
}

func NewSemanticExtractor(cfg common.LLMConfig, logger *slog.Logger) *SemanticExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral:7b-instruct-q4_0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	return &SemanticExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Available probes the backend's tags endpoint.
func (s *SemanticExtractor) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, s.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("llm.probe_failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// EligibleFields filters the missing-field list down to what the backend
// is allowed to supply.
func EligibleFields(missing []string, allowSoftProtected bool) []string {
	var out []string
	for _, f := range missing {
		if strings.HasPrefix(f, "_") {
			continue
		}
		if _, hard := HardProtectedFields[f]; hard {
			continue
		}
		if _, soft := SoftProtectedFields[f]; soft && !allowSoftProtected {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Extract asks the backend for the eligible subset of missing fields.
// The returned map holds only non-empty values.
func (s *SemanticExtractor) Extract(ctx context.Context, text string, missing []string, hints map[string]string) map[string]any {
	fields := EligibleFields(missing, s.cfg.AllowSoftProtected)
	if len(fields) == 0 {
		s.logger.Info("llm.skip", "reason", "no eligible fields")
		return nil
	}

	prompt := buildPrompt(text, fields, hints)
	raw, ok := s.generate(ctx, prompt)
	if !ok {
		return nil
	}
	result := parseJSONResponse(raw, s.logger)
	if len(result) > 0 {
		s.logger.Info("llm.extracted", "fields", keysOf(result))
	}
	return result
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (s *SemanticExtractor) generate(ctx context.Context, prompt string) (string, bool) {
	reqID := uuid.New().String()
	start := time.Now()

	payload := generateRequest{
		Model:  s.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: s.cfg.Temperature,
			TopP:        0.9,
			NumPredict:  s.cfg.MaxTokens,
		},
	}
	bs, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("llm.http.encode_error", "req_id", reqID, "error", err)
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/api/generate", bytes.NewReader(bs))
	if err != nil {
		s.logger.Error("llm.http.build_request_error", "req_id", reqID, "error", err)
		return "", false
	}
	req.Header.Set("Content-Type", "application/json")

	s.logger.Info("llm.http.request", "req_id", reqID, "model", s.cfg.Model, "content_length", len(bs))

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("llm.http.send_error", "req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", false
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			s.logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	s.logger.Info("llm.http.response", "req_id", reqID, "status", resp.StatusCode,
		"bytes", len(raw), "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		s.logger.Error("llm.http.decode_error", "req_id", reqID, "error", err)
		return "", false
	}
	if gr.Error != "" {
		s.logger.Error("llm.http.api_error", "req_id", reqID, "error", gr.Error)
		return "", false
	}
	if strings.TrimSpace(gr.Response) == "" {
		s.logger.Warn("llm.http.empty_response", "req_id", reqID)
		return "", false
	}
	return gr.Response, true
}

// buildPrompt asks for a flat JSON object over exactly the given fields,
// with the document text truncated to keep generation fast.
func buildPrompt(text string, fields []string, hints map[string]string) string {
	if len(text) > promptTextLimit {
		text = text[:promptTextLimit]
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		if hint, ok := hints[f]; ok && hint != "" {
			quoted[i] = fmt.Sprintf("%q (%s)", f, hint)
		} else {
			quoted[i] = fmt.Sprintf("%q", f)
		}
	}

	var b strings.Builder
	b.WriteString("Extrais ces champs en JSON PLAT (valeurs string uniquement):\n")
	b.WriteString("Champs: " + strings.Join(quoted, ", ") + "\n\n")
	b.WriteString("Règles STRICTES:\n")
	b.WriteString("- Format: {\"champ\": \"valeur\"}\n")
	b.WriteString("- PAS d'objets imbriqués\n")
	b.WriteString("- PAS de tableaux complexes\n")
	b.WriteString("- null si absent\n\n")
	b.WriteString("Texte:\n")
	b.WriteString(text)
	b.WriteString("\n\nJSON:")
	return b.String()
}

// parseJSONResponse pulls the first JSON object out of the raw completion,
// flattens nested objects to display strings and drops null/empty values.
func parseJSONResponse(raw string, logger *slog.Logger) map[string]any {
	match := jsonObjectRe.FindString(raw)
	if match == "" {
		logger.Warn("llm.parse.no_json", "preview", truncate(raw, 200))
		return nil
	}

	var doc any
	if err := json.Unmarshal([]byte(match), &doc); err != nil {
		logger.Warn("llm.parse.invalid_json", "error", err)
		return nil
	}
	if err := responseSchema.Validate(doc); err != nil {
		logger.Warn("llm.parse.schema_mismatch", "error", err)
		return nil
	}
	obj := doc.(map[string]any)

	cleaned := make(map[string]any, len(obj))
	for key, value := range obj {
		if nested, ok := value.(map[string]any); ok {
			// {"street": "X", "city": "Y"} -> "X, Y"
			var parts []string
			for _, v := range nested {
				if v != nil {
					parts = append(parts, fmt.Sprint(v))
				}
			}
			value = strings.Join(parts, ", ")
		}
		if isEmptyValue(value) {
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}

func keysOf(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
