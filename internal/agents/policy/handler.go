// Package policy answers questions about government schemes and subsidies
// from a curated scheme register.
package policy

import (
	"context"
	"fmt"
	"strings"

	"agribot/internal/agents"
	apperrors "agribot/internal/common/errors"
	"agribot/internal/common/logger"
	"agribot/internal/models"
)

// schemeRegister covers the central schemes farmers ask about most. Keywords
// include Hindi forms so Hinglish queries match after normalization.
var schemeRegister = []scheme{
	{
		Name:        "PM-KISAN",
		Keywords:    []string{"pm-kisan", "pm kisan", "pmkisan", "kisan samman", "6000", "installment", "kist"},
		Benefit:     "6000 INR per year paid as three installments of 2000 INR directly into the farmer's bank account.",
		Eligibility: "All landholding farmer families, excluding income tax payers and institutional landholders.",
		HowToApply:  "Register on the PM-KISAN portal (pmkisan.gov.in) or through your village patwari with Aadhaar, bank passbook and land records.",
	},
	{
		Name:        "PMFBY",
		Keywords:    []string{"pmfby", "fasal bima", "crop insurance", "bima yojana"},
		Benefit:     "Crop insurance against natural calamities, pests and diseases, with the farmer premium capped at 2% (kharif), 1.5% (rabi) and 5% (commercial crops).",
		Eligibility: "All farmers growing notified crops in notified areas, including sharecroppers and tenant farmers.",
		HowToApply:  "Enroll through your bank while taking a crop loan, at a Common Service Centre, or on the PMFBY portal before the season's cutoff date.",
	},
	{
		Name:        "Kisan Credit Card",
		Keywords:    []string{"kcc", "kisan credit", "credit card"},
		Benefit:     "Crop loans up to 3 lakh INR at 7% interest, effectively 4% with prompt repayment.",
		Eligibility: "Farmers, sharecroppers, tenant farmers and self-help groups engaged in agriculture or allied activities.",
		HowToApply:  "Apply at any scheduled bank branch with land records, identity proof and a passport photo.",
	},
	{
		Name:        "Soil Health Card",
		Keywords:    []string{"soil health", "soil card", "mitti", "soil test"},
		Benefit:     "Free soil testing every two years with crop-wise fertilizer recommendations for your field.",
		Eligibility: "All farmers.",
		HowToApply:  "Contact your block agriculture office or Krishi Vigyan Kendra to get soil samples collected.",
	},
	{
		Name:        "eNAM",
		Keywords:    []string{"enam", "e-nam", "online mandi", "national agriculture market"},
		Benefit:     "Online trading of produce across 1000+ integrated mandis for better price discovery.",
		Eligibility: "Farmers with produce to sell in an eNAM-integrated mandi.",
		HowToApply:  "Register on the eNAM portal or app with your bank details, or through your mandi gate entry.",
	},
	{
		Name:        "PKVY (organic farming)",
		Keywords:    []string{"organic", "jaivik", "pkvy", "paramparagat"},
		Benefit:     "50000 INR per hectare over three years for cluster-based organic farming, including certification support.",
		Eligibility: "Farmer groups of 20 or more forming a 20-hectare cluster.",
		HowToApply:  "Apply through your district agriculture office as a cluster.",
	},
}

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{
			"agent": string(models.CategoryPolicy),
		}),
	}
}

func (h *Handler) Category() models.Category {
	return models.CategoryPolicy
}

func (h *Handler) Process(ctx context.Context, req *models.AgentRequest) *models.AgentResult {
	if err := ctx.Err(); err != nil {
		return models.NewAgentFailure(models.CategoryPolicy, apperrors.ErrCodeAgentError, err.Error())
	}

	text := strings.ToLower(req.NormalizedText)
	matched := matchSchemes(text)

	var success models.AgentSuccess
	switch len(matched) {
	case 0:
		success = h.overviewAnswer()
	case 1:
		success = h.schemeAnswer(matched[0])
	default:
		success = h.multiSchemeAnswer(matched)
	}

	h.logger.Info("policy advice produced", map[string]interface{}{
		"schemes_matched": len(matched),
	})
	return models.NewAgentSuccess(models.CategoryPolicy, success)
}

func (h *Handler) schemeAnswer(s *scheme) models.AgentSuccess {
	answer := fmt.Sprintf("%s: %s Eligibility: %s How to apply: %s",
		s.Name, s.Benefit, s.Eligibility, s.HowToApply)

	return models.AgentSuccess{
		Answer:     answer,
		Confidence: 0.9,
		Sources:    []string{"scheme-register"},
		Suggestions: []string{
			fmt.Sprintf("What documents do I need for %s?", s.Name),
		},
	}
}

func (h *Handler) multiSchemeAnswer(matched []*scheme) models.AgentSuccess {
	parts := make([]string, 0, len(matched))
	for _, s := range matched {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Name, s.Benefit))
	}
	return models.AgentSuccess{
		Answer:     "Several schemes apply to your question: " + strings.Join(parts, " "),
		Confidence: 0.8,
		Sources:    []string{"scheme-register"},
	}
}

func (h *Handler) overviewAnswer() models.AgentSuccess {
	names := make([]string, 0, len(schemeRegister))
	for i := range schemeRegister {
		names = append(names, schemeRegister[i].Name)
	}
	return models.AgentSuccess{
		Answer: "Major central schemes for farmers: " + strings.Join(names, ", ") +
			". Ask about any of them by name for benefits, eligibility and how to apply.",
		Confidence: 0.5,
		Sources:    []string{"scheme-register"},
	}
}

func (h *Handler) HealthCheck(_ context.Context) agents.Status {
	return agents.Status{State: agents.StateHealthy}
}

// matchSchemes returns all register entries whose keywords appear, in
// register order.
func matchSchemes(text string) []*scheme {
	var matched []*scheme
	for i := range schemeRegister {
		s := &schemeRegister[i]
		for _, kw := range s.Keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched
}
