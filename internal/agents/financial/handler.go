// Package financial answers market price, credit and crop insurance
// questions. Prices come from the configured market API when available and
// from the reference MSP table otherwise.
package financial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agribot/internal/agents"
	apperrors "agribot/internal/common/errors"
	"agribot/internal/common/logger"
	"agribot/internal/models"
)

var ErrMarketTimeout = errors.New("MARKET_TIMEOUT")

// priceTable is the 2025-26 reference: minimum support price and a typical
// mandi modal price, INR per quintal.
var priceTable = []commodityPrice{
	{Commodity: "wheat", Aliases: []string{"gehu", "gehun"}, MSP: 2425, MandiPrice: 2510},
	{Commodity: "rice", Aliases: []string{"paddy", "dhan"}, MSP: 2300, MandiPrice: 2380},
	{Commodity: "cotton", Aliases: []string{"kapas"}, MSP: 7121, MandiPrice: 7350},
	{Commodity: "maize", Aliases: []string{"makka", "corn"}, MSP: 2225, MandiPrice: 2190},
	{Commodity: "sugarcane", Aliases: []string{"ganna"}, MSP: 340, MandiPrice: 355},
}

var topicKeywords = map[topic][]string{
	topicPrice:     {"price", "rate", "mandi", "msp", "sell", "bhav", "bhaav", "daam", "market"},
	topicLoan:      {"loan", "credit", "kcc", "interest", "karz", "rin"},
	topicInsurance: {"insurance", "bima", "pmfby", "claim", "premium"},
}

var topicOrder = []topic{topicInsurance, topicLoan, topicPrice}

type Handler struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{
			"agent": string(models.CategoryFinancial),
		}),
	}
}

func (h *Handler) Category() models.Category {
	return models.CategoryFinancial
}

func (h *Handler) Process(ctx context.Context, req *models.AgentRequest) *models.AgentResult {
	text := strings.ToLower(req.NormalizedText)

	switch matchTopic(text) {
	case topicLoan:
		return models.NewAgentSuccess(models.CategoryFinancial, h.loanAnswer())
	case topicInsurance:
		return models.NewAgentSuccess(models.CategoryFinancial, h.insuranceAnswer())
	default:
		return h.priceResult(ctx, text, req.Location)
	}
}

func (h *Handler) priceResult(ctx context.Context, text, location string) *models.AgentResult {
	entry := matchCommodity(text)
	if entry == nil {
		return models.NewAgentSuccess(models.CategoryFinancial, models.AgentSuccess{
			Answer:     "Please mention the commodity you want prices for, such as wheat, rice, cotton, maize or sugarcane.",
			Confidence: 0.4,
			Sources:    []string{"msp-table"},
		})
	}

	if h.config.MarketAPIBaseURL != "" {
		if success, err := h.fetchLivePriceWithRetry(ctx, entry, location); err == nil {
			return models.NewAgentSuccess(models.CategoryFinancial, *success)
		} else if errors.Is(err, ErrMarketTimeout) {
			return models.NewAgentFailure(models.CategoryFinancial, apperrors.ErrCodeAgentTimeout, err.Error())
		} else {
			h.logger.Warn("market API failed, reference prices used", map[string]interface{}{
				"commodity": entry.Commodity,
				"error":     err.Error(),
			})
		}
	}

	return models.NewAgentSuccess(models.CategoryFinancial, h.referencePrice(entry))
}

// fetchLivePriceWithRetry re-attempts transient market API failures. Timeouts
// are not retried: the dispatch call budget is already spent.
func (h *Handler) fetchLivePriceWithRetry(ctx context.Context, entry *commodityPrice, location string) (*models.AgentSuccess, error) {
	var success *models.AgentSuccess
	var err error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ErrMarketTimeout
			case <-time.After(time.Duration(100*attempt) * time.Millisecond):
			}
		}
		success, err = h.fetchLivePrice(ctx, entry, location)
		if err == nil || errors.Is(err, ErrMarketTimeout) {
			return success, err
		}
	}
	return nil, err
}

func (h *Handler) fetchLivePrice(ctx context.Context, entry *commodityPrice, location string) (*models.AgentSuccess, error) {
	endpoint := fmt.Sprintf("%s/prices?commodity=%s&api-key=%s",
		h.config.MarketAPIBaseURL, url.QueryEscape(entry.Commodity), h.config.MarketAPIKey)
	if location != "" {
		endpoint += "&market=" + url.QueryEscape(location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, ErrMarketTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market API returned %d", resp.StatusCode)
	}

	var parsed marketAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Records) == 0 {
		return nil, fmt.Errorf("no market records for %s", entry.Commodity)
	}

	record := parsed.Records[0]
	answer := fmt.Sprintf("Current %s price at %s mandi is %s INR per quintal (MSP: %d INR).",
		entry.Commodity, record.Market, record.ModalPrice, entry.MSP)

	return &models.AgentSuccess{
		Answer:     answer,
		Confidence: 0.9,
		Sources:    []string{"agmarknet"},
		Recommendations: []string{
			"Compare rates at two or three nearby mandis before selling.",
		},
	}, nil
}

func (h *Handler) referencePrice(entry *commodityPrice) models.AgentSuccess {
	answer := fmt.Sprintf("Reference prices for %s: MSP is %d INR per quintal and typical mandi rates are around %d INR per quintal.",
		entry.Commodity, entry.MSP, entry.MandiPrice)

	recommendations := []string{
		"Check your nearest mandi's board or the eNAM app for today's modal price.",
	}
	if entry.MandiPrice < entry.MSP {
		recommendations = append(recommendations,
			fmt.Sprintf("Mandi rates are running below MSP; sell %s at a government procurement centre instead.", entry.Commodity))
	}

	return models.AgentSuccess{
		Answer:          answer,
		Confidence:      0.7,
		Sources:         []string{"msp-table"},
		Recommendations: recommendations,
	}
}

func (h *Handler) loanAnswer() models.AgentSuccess {
	return models.AgentSuccess{
		Answer: "The Kisan Credit Card (KCC) gives crop loans up to 3 lakh INR at 7% interest, " +
			"reduced to an effective 4% with prompt repayment. Apply at any scheduled bank with your land records, " +
			"identity proof and a passport photo.",
		Confidence: 0.85,
		Sources:    []string{"kcc-guidelines"},
		Recommendations: []string{
			"Repay within the season to keep the 3% prompt-repayment subvention.",
		},
		Suggestions: []string{
			"What documents do I need for a KCC application?",
		},
	}
}

func (h *Handler) insuranceAnswer() models.AgentSuccess {
	return models.AgentSuccess{
		Answer: "Under PMFBY (Pradhan Mantri Fasal Bima Yojana) the farmer premium is capped at 2% of the sum insured " +
			"for kharif crops, 1.5% for rabi and 5% for commercial crops. Report crop loss to your bank or the PMFBY " +
			"portal within 72 hours of the event.",
		Confidence: 0.85,
		Sources:    []string{"pmfby-guidelines"},
		Recommendations: []string{
			"Photograph the damaged field before reporting the loss.",
		},
	}
}

func (h *Handler) HealthCheck(_ context.Context) agents.Status {
	if h.config.MarketAPIBaseURL == "" {
		return agents.Status{State: agents.StateDegraded, Detail: "no market API, reference prices only"}
	}
	return agents.Status{State: agents.StateHealthy}
}

func matchCommodity(text string) *commodityPrice {
	for i := range priceTable {
		entry := &priceTable[i]
		if strings.Contains(text, entry.Commodity) {
			return entry
		}
		for _, alias := range entry.Aliases {
			if strings.Contains(text, alias) {
				return entry
			}
		}
	}
	return nil
}

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
