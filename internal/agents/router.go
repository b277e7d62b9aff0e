package agents

import (
	"log/slog"
	"sync"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/common"
	"github.com/smalter/autodoc/internal/extract"
	"github.com/smalter/autodoc/internal/patterns"
)

type cacheKey struct {
	docType  constants.DocumentType
	language string
}

// Router maps a declared document type to its agent, caching one instance
// per (type, language) pair. Concurrent resolves of the same key may race
// to build the first instance; either one is equivalent.
type Router struct {
	llm    *extract.SemanticExtractor // shared across languages, nil when disabled
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[cacheKey]*Agent
}

func NewRouter(cfg common.LLMConfig, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	var llm *extract.SemanticExtractor
	if cfg.Enabled {
		llm = extract.NewSemanticExtractor(cfg, logger)
	}
	return &Router{
		llm:    llm,
		logger: logger,
		cache:  make(map[cacheKey]*Agent),
	}
}

// Resolve returns the agent for a declared type and language, or false
// when no agent exists for the type.
func (r *Router) Resolve(docType constants.DocumentType, language string) (*Agent, bool) {
	docType = constants.NormalizeDocumentType(string(docType))
	set := patterns.ForLanguage(language)
	key := cacheKey{docType: docType, language: set.LanguageCode()}

	r.mu.RLock()
	agent, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return agent, true
	}

	regex := extract.NewPatternExtractor(set, r.logger)
	hybrid := extract.NewHybridExtractor(regex, r.llm, r.logger)
	agent, ok = New(docType, hybrid, r.logger)
	if !ok {
		r.logger.Warn("router.unknown_type", "document_type", docType)
		return nil, false
	}

	r.mu.Lock()
	if cached, exists := r.cache[key]; exists {
		agent = cached
	} else {
		r.cache[key] = agent
	}
	r.mu.Unlock()

	r.logger.Info("router.resolved", "document_type", docType, "language", key.language, "agent", agent.Name())
	return agent, true
}

// SupportedTypes lists the declared types a caller may use.
func (r *Router) SupportedTypes() []constants.DocumentType {
	return constants.SupportedDocumentTypes
}
