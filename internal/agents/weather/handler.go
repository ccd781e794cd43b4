// Package weather answers weather and irrigation-timing questions from
// current conditions at the farmer's location.
package weather

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

var (
	ErrWeatherTimeout     = errors.New("WEATHER_TIMEOUT")
	ErrWeatherUnavailable = errors.New("WEATHER_UNAVAILABLE")
)

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
			"agent": string(models.CategoryWeather),
		}),
	}
}

func (h *Handler) Category() models.Category {
	return models.CategoryWeather
}

func (h *Handler) Process(ctx context.Context, req *models.AgentRequest) *models.AgentResult {
	location := req.Location
	if location == "" {
		location = h.config.DefaultLocation
	}

	// Without an API key, serve the seasonal advisory instead of failing the
	// whole category.
	if h.config.APIKey == "" {
		return models.NewAgentSuccess(models.CategoryWeather, h.seasonalAdvisory(location, time.Now()))
	}

	cond, err := h.fetchWithRetry(ctx, location)
	if err != nil {
		if errors.Is(err, ErrWeatherTimeout) {
			return models.NewAgentFailure(models.CategoryWeather, apperrors.ErrCodeAgentTimeout, err.Error())
		}
		return models.NewAgentFailure(models.CategoryWeather, apperrors.ErrCodeAgentError, err.Error())
	}

	success := h.buildAdvice(cond)
	h.logger.Info("weather advice produced", map[string]interface{}{
		"location": cond.Location,
		"temp_c":   cond.TempC,
	})
	return models.NewAgentSuccess(models.CategoryWeather, success)
}

// fetchWithRetry re-attempts transient upstream failures. Timeouts are not
// retried: the dispatch call budget is already spent.
func (h *Handler) fetchWithRetry(ctx context.Context, location string) (*conditions, error) {
	var cond *conditions
	var err error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ErrWeatherTimeout
			case <-time.After(time.Duration(100*attempt) * time.Millisecond):
			}
		}
		cond, err = h.fetch(ctx, location)
		if err == nil || errors.Is(err, ErrWeatherTimeout) {
			return cond, err
		}
	}
	return nil, err
}

func (h *Handler) fetch(ctx context.Context, location string) (*conditions, error) {
	endpoint := fmt.Sprintf("%s/weather?q=%s&appid=%s&units=%s",
		h.config.BaseURL, url.QueryEscape(location), h.config.APIKey, h.config.Units)

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
			return nil, ErrWeatherTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: weather API returned %d", ErrWeatherUnavailable, resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	cond := &conditions{
		Location:  parsed.Name,
		TempC:     parsed.Main.Temp,
		Humidity:  parsed.Main.Humidity,
		WindSpeed: parsed.Wind.Speed,
	}
	if cond.Location == "" {
		cond.Location = location
	}
	if len(parsed.Weather) > 0 {
		cond.Description = parsed.Weather[0].Description
		main := strings.ToLower(parsed.Weather[0].Main)
		cond.Raining = main == "rain" || main == "drizzle" || main == "thunderstorm"
	}
	return cond, nil
}

func (h *Handler) buildAdvice(cond *conditions) models.AgentSuccess {
	answer := fmt.Sprintf("Current weather in %s: %s, %.1f°C with %d%% humidity and wind at %.1f m/s.",
		cond.Location, cond.Description, cond.TempC, cond.Humidity, cond.WindSpeed)

	var recommendations []string
	switch {
	case cond.Raining:
		recommendations = append(recommendations,
			"Rain is active; postpone pesticide spraying and harvesting until it clears.",
			"Check field drainage to avoid waterlogging in low-lying plots.")
	case cond.TempC >= 35:
		recommendations = append(recommendations,
			"High heat; irrigate in the early morning or evening to cut evaporation losses.",
			"Consider mulching to retain soil moisture.")
	case cond.TempC <= 5:
		recommendations = append(recommendations,
			"Frost risk; irrigate lightly in the evening to protect standing crops.")
	default:
		recommendations = append(recommendations,
			"Conditions are suitable for routine field operations.")
	}
	if cond.Humidity >= 80 && !cond.Raining {
		recommendations = append(recommendations,
			"High humidity raises fungal disease risk; inspect crops for early symptoms.")
	}

	return models.AgentSuccess{
		Answer:          answer,
		Confidence:      0.85,
		Sources:         []string{"openweathermap"},
		Recommendations: recommendations,
	}
}

// seasonalAdvisory is the keyless fallback: month-based guidance for the
// Indian cropping calendar.
func (h *Handler) seasonalAdvisory(location string, now time.Time) models.AgentSuccess {
	var season, advice string
	switch m := now.Month(); {
	case m >= time.June && m <= time.September:
		season = "monsoon (kharif)"
		advice = "Expect regular rainfall; plan sowing of kharif crops like rice and maize, and keep drainage channels clear."
	case m >= time.October && m <= time.November:
		season = "post-monsoon (rabi sowing)"
		advice = "Rainfall is receding; prepare fields for rabi crops such as wheat and mustard."
	case m >= time.December || m <= time.February:
		season = "winter (rabi)"
		advice = "Cool and dry conditions; watch for frost on sensitive crops and schedule light irrigations."
	default:
		season = "summer (zaid)"
		advice = "Hot and dry conditions; limit field work to mornings and irrigate frequently."
	}

	return models.AgentSuccess{
		Answer:     fmt.Sprintf("Live weather data is not configured for %s. Seasonal outlook: %s. %s", location, season, advice),
		Confidence: 0.5,
		Sources:    []string{"seasonal-calendar"},
	}
}

func (h *Handler) HealthCheck(ctx context.Context) agents.Status {
	if h.config.APIKey == "" {
		return agents.Status{State: agents.StateDegraded, Detail: "no weather API key, seasonal fallback active"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := h.fetch(checkCtx, h.config.DefaultLocation); err != nil {
		return agents.Status{State: agents.StateUnhealthy, Detail: err.Error()}
	}
	return agents.Status{State: agents.StateHealthy}
}
