// Package router decides, per question, which downstream strategy answers
// it: direct, rag, sql, or hybrid (§4.3). The pipeline runs cheap checks
// first — guardrail, language, length — before ever calling an LLM, then
// asks the classification model for a strict decision and finally fuzzy-
// promotes and validates it against the canonical vocabulary.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/janreigtorra/castellerq/config"
	"github.com/janreigtorra/castellerq/internal/entities"
	"github.com/janreigtorra/castellerq/internal/langdetect"
	"github.com/janreigtorra/castellerq/llm"
	"github.com/janreigtorra/castellerq/types"
	"go.uber.org/zap"
)

// Router implements the decide_route pipeline.
type Router struct {
	registry *llm.ProviderRegistry
	provider config.ProviderName
	model    string
	cfg      config.RouterConfig
	vocab    Vocabulary
	detector langdetect.Detector
	logger   *zap.Logger
}

// New builds a Router bound to the vendor:model pair named by
// cfg.LLM.RouterModel, failing fast if it can't be parsed — BuildRegistry
// already guarantees that vendor is registered (§6 startup validation).
func New(cfg *config.Config, registry *llm.ProviderRegistry, vocab Vocabulary, detector langdetect.Detector, logger *zap.Logger) (*Router, error) {
	provider, model, err := config.ParseProviderModel(cfg.LLM.RouterModel)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	return &Router{
		registry: registry,
		provider: provider,
		model:    model,
		cfg:      cfg.Router,
		vocab:    vocab,
		detector: detector,
		logger:   logger.With(zap.String("component", "router")),
	}, nil
}

// directDecision is the shape every pre-check short-circuit returns.
func directDecision(response string) types.RouterDecision {
	return types.RouterDecision{Tool: types.ToolDirect, DirectResponse: response}
}

// Decide runs the full pipeline (§4.3) and returns the validated decision.
func (r *Router) Decide(ctx context.Context, question string) (types.RouterDecision, error) {
	if isGuardrailViolation(question) {
		return directDecision(guardrailResponse), nil
	}

	if code, ok := r.detector.Detect(question); ok {
		if !isAccepted(code, r.cfg.TargetLanguage, r.cfg.AcceptedRelatives) {
			return directDecision(languageApology(code)), nil
		}
	}

	if countTokens(question) > r.cfg.MaxQuestionTokens {
		return directDecision(tooLongResponse), nil
	}

	preExtracted := entities.Extract(question, r.vocab)

	raw, err := r.classify(ctx, question, preExtracted)
	if err != nil {
		return types.RouterDecision{}, fmt.Errorf("router: classification call failed: %w", err)
	}

	decision := r.resolve(question, raw)
	return decision, nil
}

// classify runs the LLM classification call (§4.3 step 5), constraining
// the model to the candidate sets entity pre-extraction already found.
func (r *Router) classify(ctx context.Context, question string, pre types.Entities) (types.RawRouterDecision, error) {
	provider, ok := r.registry.Get(string(r.provider))
	if !ok {
		return types.RawRouterDecision{}, fmt.Errorf("provider %q not registered", r.provider)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: classifierSystemPrompt},
		{Role: llm.RoleDeveloper, Content: candidateEntitiesPrompt(pre)},
		{Role: llm.RoleUser, Content: question},
	}

	cfg := llm.Config{Provider: string(r.provider), Model: r.model, Temperature: 0}
	body, err := provider.Parse(ctx, messages, cfg, classificationSchema())
	if err != nil {
		return types.RawRouterDecision{}, err
	}

	var raw types.RawRouterDecision
	if err := json.Unmarshal(body, &raw); err != nil {
		return types.RawRouterDecision{}, fmt.Errorf("malformed classification response: %w", err)
	}
	return raw, nil
}

const classifierSystemPrompt = `Ets el classificador d'en Xiquet, un assistent expert en castells catalans.
La teva única feina és triar l'estratègia correcta per respondre la pregunta de l'usuari:
- "direct": la pregunta no necessita dades (salutacions, preguntes generals sobre el teu rol).
- "rag": la pregunta demana coneixement general o narratiu sobre castells/colles, sense xifres concretes.
- "sql": la pregunta demana una dada concreta de la base de dades (rànquings, historials, estadístiques).
- "hybrid": la pregunta necessita tant dades concretes com una explicació narrativa.
Quan triïs "sql" o "hybrid", indica el tipus de consulta més semblant si n'hi ha un de clar; si no, deixa'l en blanc.
Només pots fer servir valors de les llistes de candidats que se't donin per a cada tipus d'entitat; mai n'inventis.`

// candidateEntitiesPrompt enumerates the fuzzy pre-extracted candidates so
// the model only ever picks from values the question plausibly mentions,
// mirroring abans_de_res's dynamically built entities_section.
func candidateEntitiesPrompt(pre types.Entities) string {
	var b strings.Builder
	b.WriteString("Candidats detectats a la pregunta (tria només d'aquestes llistes, o deixa-ho buit si no n'hi ha cap):\n")
	if len(pre.Teams) > 0 {
		fmt.Fprintf(&b, "- Colles: %s\n", strings.Join(pre.Teams, ", "))
	}
	if len(pre.Constructions) > 0 {
		codes := make([]string, len(pre.Constructions))
		for i, c := range pre.Constructions {
			codes[i] = c.Code
		}
		fmt.Fprintf(&b, "- Castells: %s\n", strings.Join(codes, ", "))
	}
	if len(pre.Years) > 0 {
		years := make([]string, len(pre.Years))
		for i, y := range pre.Years {
			years[i] = strconv.Itoa(y)
		}
		fmt.Fprintf(&b, "- Anys: %s\n", strings.Join(years, ", "))
	}
	if len(pre.Places) > 0 {
		fmt.Fprintf(&b, "- Llocs: %s\n", strings.Join(pre.Places, ", "))
	}
	if len(pre.Events) > 0 {
		fmt.Fprintf(&b, "- Diades: %s\n", strings.Join(pre.Events, ", "))
	}
	return b.String()
}

// resolve applies sql-type fuzzy promotion, the contestHistory override
// rule, and entity/tool validation (§4.3 steps 6-7).
func (r *Router) resolve(question string, raw types.RawRouterDecision) types.RouterDecision {
	tool, ok := validTools[raw.Tool]
	if !ok {
		r.logger.Warn("unrecognized tool in classification response", zap.String("tool", raw.Tool))
		return directDecision(unrecognizedToolMessage)
	}

	entitiesFound := len(raw.Teams) > 0 || len(raw.Constructions) > 0 || len(raw.Years) > 0 ||
		len(raw.Places) > 0 || len(raw.Events) > 0

	var sqlType types.SQLQueryType

	switch {
	case (tool == types.ToolDirect || tool == types.ToolRAG) && entitiesFound:
		threshold := r.cfg.RAGToSQLThreshold
		if tool == types.ToolDirect {
			threshold = r.cfg.DirectToSQLThreshold
		}
		if matched, score := bestPatternMatch(question); float64(score) >= threshold*100 {
			tool = types.ToolSQL
			sqlType = matched
		}
	case tool == types.ToolSQL || tool == types.ToolHybrid:
		if raw.SQLQueryType != "" {
			if resolved, ok := validSQLTypes[raw.SQLQueryType]; ok {
				sqlType = resolved
			}
		}
		if sqlType == "" {
			matched, score := bestPatternMatch(question)
			if float64(score) >= r.cfg.CustomFallbackThreshold*100 {
				sqlType = matched
			} else {
				sqlType = types.SQLCustom
			}
		}
	}

	ents := validateEntities(raw, r.vocab)

	if sqlType == types.SQLContestHistory && (len(ents.Tracks) > 0 || len(ents.Positions) > 0) {
		sqlType = types.SQLContestRanking
	}

	decision := types.RouterDecision{
		Tool:           tool,
		SQLQueryType:   sqlType,
		DirectResponse: raw.DirectResponse,
		Entities:       ents,
	}
	if tool != types.ToolDirect {
		decision.DirectResponse = ""
	}
	return decision
}
