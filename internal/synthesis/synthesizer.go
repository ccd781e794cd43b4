// Package synthesis merges agent outcomes into the single response every
// query must produce.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	apperrors "agribot/internal/common/errors"
	"agribot/internal/common/logger"
	"agribot/internal/models"
	"agribot/pkg/manifest"
)

// Generator is the slice of the GenAI provider used to compose prose for
// multi-agent answers. It is an oracle that may be wrong or absent, never the
// source of structure.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// apologyConfidence is the fixed confidence of the all-agents-failed
// response, inside the 0.1–0.2 band the pipeline reserves for it.
const apologyConfidence = 0.15

// corroborationBoost is added per additional successful agent when merging,
// so multi-agent coverage never appears less confident than the best single
// component.
const corroborationBoost = 0.05

var apologies = map[string]string{
	"en": "I apologize, but I'm having trouble understanding your question right now. Please try rephrasing your agricultural query, and I'll do my best to help you.",
	"hi": "मुझे खेद है, मुझे अभी आपका प्रश्न समझने में कठिनाई हो रही है। कृपया अपना कृषि संबंधी प्रश्न दोबारा पूछें, और मैं आपकी सहायता करने की पूरी कोशिश करूंगा।",
}

type Synthesizer struct {
	generator Generator
	manifest  *manifest.AgentManifest
	logger    logger.Logger
}

// NewSynthesizer builds a synthesizer. The generator may be nil; merging then
// always uses the deterministic composition.
func NewSynthesizer(generator Generator, m *manifest.AgentManifest, log logger.Logger) *Synthesizer {
	return &Synthesizer{
		generator: generator,
		manifest:  m,
		logger:    log.With(map[string]interface{}{"component": "synthesis"}),
	}
}

// Synthesize reduces the per-agent outcomes to one response. ranked is the
// classifier's order and fixes every ordering decision below. history is the
// session window; recent exchanges flavor the generation prompt and may be
// nil. The answer text is English except for the apology, which is already
// localized; the caller checks Language before translating.
func (s *Synthesizer) Synthesize(ctx context.Context, query *models.Query, history *models.SessionContext, ranked []models.Category, results map[models.Category]*models.AgentResult) *models.SynthesizedResponse {
	var successes []models.Category
	var caveats []models.Caveat

	for _, cat := range ranked {
		result, ok := results[cat]
		if !ok {
			continue
		}
		if result.OK() {
			successes = append(successes, cat)
		} else {
			caveats = append(caveats, models.Caveat{Agent: cat, Code: string(result.Failure.Code)})
		}
	}

	switch {
	case len(successes) == 0:
		return s.apology(query, ranked, caveats)
	case len(successes) == 1:
		return s.passthrough(query, ranked, results[successes[0]], caveats)
	default:
		return s.merge(ctx, query, history, ranked, successes, results, caveats)
	}
}

// passthrough returns the single success unchanged: its confidence is the
// response confidence.
func (s *Synthesizer) passthrough(query *models.Query, ranked []models.Category, result *models.AgentResult, caveats []models.Caveat) *models.SynthesizedResponse {
	success := result.Success
	return &models.SynthesizedResponse{
		Answer:            success.Answer,
		Confidence:        success.Confidence,
		Sources:           append([]string{}, success.Sources...),
		Recommendations:   append([]string{}, success.Recommendations...),
		Caveats:           caveats,
		FollowUpQuestions: s.followUps(success.Suggestions, []models.Category{result.Category}),
		AgentsConsulted:   ranked,
		Language:          "en",
		SessionID:         query.SessionID,
	}
}

func (s *Synthesizer) merge(ctx context.Context, query *models.Query, history *models.SessionContext, ranked, successes []models.Category, results map[models.Category]*models.AgentResult, caveats []models.Caveat) *models.SynthesizedResponse {
	answer := s.composeAnswer(ctx, query, history, successes, results)

	var sources, recommendations, suggestions []string
	best := 0.0
	for _, cat := range successes {
		success := results[cat].Success
		if success.Confidence > best {
			best = success.Confidence
		}
		sources = appendUnique(sources, success.Sources)
		recommendations = appendUnique(recommendations, success.Recommendations)
		suggestions = appendUnique(suggestions, success.Suggestions)
	}

	// Never below the best component; corroborating agents add a little.
	confidence := best + corroborationBoost*float64(len(successes)-1)
	if confidence > 0.99 {
		confidence = 0.99
	}

	return &models.SynthesizedResponse{
		Answer:            answer,
		Confidence:        confidence,
		Sources:           sources,
		Recommendations:   recommendations,
		Caveats:           caveats,
		FollowUpQuestions: s.followUps(suggestions, successes),
		AgentsConsulted:   ranked,
		Language:          "en",
		SessionID:         query.SessionID,
	}
}

// composeAnswer asks the generator for a merged narrative. When generation
// errors or returns nothing usable it falls back deterministically to the
// best single success (highest confidence, earlier ranked category on ties).
func (s *Synthesizer) composeAnswer(ctx context.Context, query *models.Query, history *models.SessionContext, successes []models.Category, results map[models.Category]*models.AgentResult) string {
	if s.generator != nil {
		prompt := s.buildPrompt(query, history, successes, results)
		text, err := s.generator.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			s.logger.Warn("generation failed, best single answer used", map[string]interface{}{
				"error": apperrors.NewSynthesisFailedError(err).Error(),
			})
		}
	}

	best := successes[0]
	for _, cat := range successes[1:] {
		if results[cat].Success.Confidence > results[best].Success.Confidence {
			best = cat
		}
	}
	return results[best].Success.Answer
}

// promptHistoryLimit caps how many recent exchanges enter the prompt.
const promptHistoryLimit = 3

func (s *Synthesizer) buildPrompt(query *models.Query, history *models.SessionContext, successes []models.Category, results map[models.Category]*models.AgentResult) string {
	var b strings.Builder
	b.WriteString("Combine the following expert advice into one coherent answer for a farmer.\n")
	if history != nil && len(history.Exchanges) > 0 {
		b.WriteString("Recent conversation:\n")
		limit := len(history.Exchanges)
		if limit > promptHistoryLimit {
			limit = promptHistoryLimit
		}
		for i := limit - 1; i >= 0; i-- {
			ex := history.Exchanges[i]
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", ex.Query, ex.Answer)
		}
	}
	fmt.Fprintf(&b, "Question: %s\n", query.NormalizedText)
	for _, cat := range successes {
		fmt.Fprintf(&b, "[%s] %s\n", cat, results[cat].Success.Answer)
	}
	return b.String()
}

// apology is the deterministic terminal fallback when every selected agent
// failed. No fabricated sources, fixed low confidence.
func (s *Synthesizer) apology(query *models.Query, ranked []models.Category, caveats []models.Caveat) *models.SynthesizedResponse {
	lang := query.Language
	text, ok := apologies[lang]
	if !ok {
		lang = "en"
		text = apologies["en"]
	}

	return &models.SynthesizedResponse{
		Answer:            text,
		Confidence:        apologyConfidence,
		Sources:           []string{},
		Recommendations:   []string{},
		Caveats:           caveats,
		FollowUpQuestions: []string{},
		AgentsConsulted:   ranked,
		Language:          lang,
		SessionID:         query.SessionID,
	}
}

// followUps prefers agent-provided suggestions and falls back to the
// manifest's static per-category questions.
func (s *Synthesizer) followUps(suggestions []string, cats []models.Category) []string {
	if len(suggestions) > 0 {
		return suggestions
	}
	var out []string
	for _, cat := range cats {
		if entry := s.manifest.Entry(string(cat)); entry != nil {
			out = appendUnique(out, entry.Suggestions)
		}
	}
	return out
}

// appendUnique appends items preserving first-seen order.
func appendUnique(dst []string, items []string) []string {
	for _, item := range items {
		found := false
		for _, existing := range dst {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}
