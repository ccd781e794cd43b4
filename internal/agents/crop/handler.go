// Package crop answers agronomy questions (sowing, irrigation, varieties,
// pests, yield) from a curated crop database plus retrieved knowledge
// passages.
package crop

import (
	"context"
	"fmt"
	"strings"

	"agribot/internal/agents"
	apperrors "agribot/internal/common/errors"
	"agribot/internal/common/logger"
	"agribot/internal/models"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{
			"agent": string(models.CategoryCrop),
		}),
	}
}

func (h *Handler) Category() models.Category {
	return models.CategoryCrop
}

func (h *Handler) Process(ctx context.Context, req *models.AgentRequest) *models.AgentResult {
	if err := ctx.Err(); err != nil {
		return models.NewAgentFailure(models.CategoryCrop, apperrors.ErrCodeAgentError, err.Error())
	}

	text := strings.ToLower(req.NormalizedText)
	info := matchCrop(text)
	top := matchTopic(text)

	var success models.AgentSuccess
	if info != nil {
		success = h.answerFor(info, top)
	} else {
		success = h.generalAnswer(top)
	}

	// Retrieved passages corroborate the curated answer and surface their
	// sources.
	for _, snippet := range req.Knowledge {
		success.Answer = success.Answer + " " + snippet.Content
		if snippet.Source != "" && !contains(success.Sources, snippet.Source) {
			success.Sources = append(success.Sources, snippet.Source)
		}
	}

	h.logger.Info("crop advice produced", map[string]interface{}{
		"crop_matched": info != nil,
	})
	return models.NewAgentSuccess(models.CategoryCrop, success)
}

func (h *Handler) answerFor(info *cropInfo, top topic) models.AgentSuccess {
	var answer string
	confidence := 0.9
	var recommendations []string

	switch top {
	case topicSowing:
		answer = fmt.Sprintf("Sow %s in the %s (%s crop).",
			info.Name, info.SowingWindow, info.Season)
		recommendations = append(recommendations, "Treat seed before sowing and follow the recommended spacing for your region.")
	case topicIrrigation:
		answer = fmt.Sprintf("Irrigation for %s: %s", info.Name, info.Irrigation)
	case topicPest:
		answer = h.pestAnswer(info)
	case topicVariety:
		answer = fmt.Sprintf("Recommended %s varieties: %s.", info.Name, strings.Join(info.Varieties, ", "))
		recommendations = append(recommendations, "Buy certified seed from an authorized dealer and keep the purchase receipt.")
	case topicYield:
		answer = fmt.Sprintf("%s: %s", title(info.Name), info.Yield)
	default:
		answer = fmt.Sprintf("%s (%s crop): sow in the %s. Recommended varieties include %s. %s",
			title(info.Name), info.Season, info.SowingWindow,
			strings.Join(info.Varieties, ", "), info.Irrigation)
		confidence = 0.8
	}

	return models.AgentSuccess{
		Answer:          answer,
		Confidence:      confidence,
		Sources:         []string{"crop-database"},
		Recommendations: recommendations,
	}
}

func (h *Handler) pestAnswer(info *cropInfo) string {
	if len(info.Pests) == 0 {
		return fmt.Sprintf("No major pest records for %s; consult your local Krishi Vigyan Kendra for field-specific diagnosis.", info.Name)
	}
	parts := make([]string, 0, len(info.Pests))
	for _, p := range info.Pests {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", p.Name, p.Symptom, p.Treatment))
	}
	return fmt.Sprintf("Common %s problems and their management: %s.", info.Name, strings.Join(parts, "; "))
}

// generalAnswer covers crop questions that name no crop we track.
func (h *Handler) generalAnswer(top topic) models.AgentSuccess {
	answer := "Please mention the crop you are growing for specific advice."
	switch top {
	case topicSowing:
		answer += " As a rule, kharif crops go in with the June monsoon and rabi crops in October-November."
	case topicIrrigation:
		answer += " In general, irrigate at the crop's critical growth stages and avoid waterlogging."
	case topicPest:
		answer += " For pest problems, note the symptom and affected part; your local Krishi Vigyan Kendra can confirm the diagnosis."
	}
	return models.AgentSuccess{
		Answer:     answer,
		Confidence: 0.4,
		Sources:    []string{"crop-database"},
	}
}

func (h *Handler) HealthCheck(_ context.Context) agents.Status {
	// Static database, always serviceable.
	return agents.Status{State: agents.StateHealthy}
}

func matchCrop(text string) *cropInfo {
	for i := range cropDatabase {
		info := &cropDatabase[i]
		if strings.Contains(text, info.Name) {
			return info
		}
		for _, alias := range info.Aliases {
			if strings.Contains(text, alias) {
				return info
			}
		}
	}
	return nil
}

// topicOrder fixes precedence when a question touches several topics.
var topicOrder = []topic{topicPest, topicIrrigation, topicSowing, topicVariety, topicYield}

func matchTopic(text string) topic {
	for _, top := range topicOrder {
		for _, kw := range topicKeywords[top] {
			if strings.Contains(text, kw) {
				return top
			}
		}
	}
	return topicGeneral
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
