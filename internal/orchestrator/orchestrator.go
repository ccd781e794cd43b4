// Package orchestrator runs the full query pipeline: language normalization,
// classification, knowledge retrieval, concurrent agent dispatch, synthesis,
// localization and session bookkeeping.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"agribot/internal/agents"
	apperrors "agribot/internal/common/errors"
	"agribot/internal/common/logger"
	"agribot/internal/common/metrics"
	"agribot/internal/dispatch"
	"agribot/internal/intent"
	"agribot/internal/knowledge"
	"agribot/internal/language"
	"agribot/internal/models"
	"agribot/internal/persistence"
	"agribot/internal/session"
	"agribot/internal/synthesis"
)

// Request is one incoming user query before any processing.
type Request struct {
	Text        string                 `json:"text"`
	SessionID   string                 `json:"session_id,omitempty"`
	Location    string                 `json:"location,omitempty"`
	UserContext map[string]interface{} `json:"user_context,omitempty"`
}

// QueryObserver receives service-wide query telemetry. Satisfied by
// observability.Observability.
type QueryObserver interface {
	RecordQueryProcessed(ctx context.Context, status string)
	RecordQueryDuration(ctx context.Context, duration time.Duration, status string)
}

type Orchestrator struct {
	bridge      *language.Bridge
	classifier  *intent.Classifier
	registry    *agents.Registry
	dispatcher  *dispatch.Dispatcher
	synthesizer *synthesis.Synthesizer
	sessions    session.Store
	retriever   *knowledge.Retriever
	queryLog    *persistence.QueryLog
	observer    QueryObserver
	logger      logger.Logger
}

// New wires the pipeline. retriever and queryLog may be nil; both are
// best-effort stages.
func New(
	bridge *language.Bridge,
	classifier *intent.Classifier,
	registry *agents.Registry,
	dispatcher *dispatch.Dispatcher,
	synthesizer *synthesis.Synthesizer,
	sessions session.Store,
	retriever *knowledge.Retriever,
	queryLog *persistence.QueryLog,
	log logger.Logger,
) (*Orchestrator, error) {
	if registry == nil || len(registry.Categories()) == 0 {
		return nil, apperrors.NewNoAgentsError()
	}
	return &Orchestrator{
		bridge:      bridge,
		classifier:  classifier,
		registry:    registry,
		dispatcher:  dispatcher,
		synthesizer: synthesizer,
		sessions:    sessions,
		retriever:   retriever,
		queryLog:    queryLog,
		logger:      log.With(map[string]interface{}{"component": "orchestrator"}),
	}, nil
}

// SetObserver attaches the service-wide meter. Optional.
func (o *Orchestrator) SetObserver(obs QueryObserver) {
	o.observer = obs
}

// Handle processes one query end to end. The only hard error is an empty
// query; every downstream failure degrades the response instead.
func (o *Orchestrator) Handle(ctx context.Context, req *Request) (*models.SynthesizedResponse, error) {
	start := time.Now()

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.NewEmptyQueryError()
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// One session read feeds location fallback, classification and synthesis.
	history, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		history = nil
	}

	query := o.normalize(ctx, text, req, history, sessionID)
	ranked := o.classify(ctx, query, history)
	results := o.dispatchStage(ctx, query, ranked)

	resp := o.synthesize(ctx, query, history, ranked, results)
	o.localize(ctx, query, resp)

	elapsed := time.Since(start)
	resp.ProcessingTime = elapsed.Seconds()

	o.recordSession(ctx, query, resp)
	o.recordLog(query, resp)

	status := "success"
	if len(resp.Sources) == 0 {
		status = "fallback"
	}
	metrics.QueriesProcessed.WithLabelValues(query.Language, status).Inc()
	if o.observer != nil {
		o.observer.RecordQueryProcessed(ctx, status)
		o.observer.RecordQueryDuration(ctx, elapsed, status)
	}

	o.logger.Info("query processed", map[string]interface{}{
		"query_id":      query.ID,
		"session_id":    query.SessionID,
		"language":      query.Language,
		"categories":    len(ranked),
		"confidence":    resp.Confidence,
		"processing_ms": int64(resp.ProcessingTime * 1000),
	})
	return resp, nil
}

// normalize detects the language and brings the query into English.
func (o *Orchestrator) normalize(ctx context.Context, text string, req *Request, history *models.SessionContext, sessionID string) *models.Query {
	defer o.timeStage("language")()

	detection := o.bridge.Detect(ctx, text)

	normalized := text
	if detection.Language != "en" {
		translation := o.bridge.ToEnglish(ctx, text, detection.Language)
		normalized = translation.Text
		if translation.Degraded {
			o.logger.Warn("inbound translation degraded", map[string]interface{}{
				"language": detection.Language,
			})
		}
	}

	location := req.Location
	if location == "" {
		location = extractLocation(normalized)
	}
	if location == "" && history != nil {
		// Fall back to the location remembered from earlier in the session.
		location = history.Context["location"]
	}

	return &models.Query{
		ID:                 uuid.NewString(),
		RawText:            text,
		Language:           detection.Language,
		LanguageConfidence: detection.Confidence,
		NormalizedText:     normalized,
		SessionID:          sessionID,
		Location:           location,
		UserContext:        req.UserContext,
		ReceivedAt:         time.Now().UTC(),
	}
}

func (o *Orchestrator) classify(ctx context.Context, query *models.Query, history *models.SessionContext) []models.Category {
	defer o.timeStage("classification")()

	result := o.classifier.Classify(ctx, query.NormalizedText, history)
	if result.Ambiguous {
		o.logger.Info("classification ambiguous, default category used", map[string]interface{}{
			"query_id": query.ID,
		})
	}

	ranked := make([]models.Category, 0, len(result.Ranked))
	for _, r := range result.Ranked {
		ranked = append(ranked, r.Category)
	}
	return ranked
}

func (o *Orchestrator) dispatchStage(ctx context.Context, query *models.Query, ranked []models.Category) map[models.Category]*models.AgentResult {
	defer o.timeStage("dispatch")()

	template := &models.AgentRequest{
		NormalizedText: query.NormalizedText,
		Location:       query.Location,
		UserContext:    query.UserContext,
	}

	if o.retriever != nil && len(ranked) > 0 {
		template.Knowledge = o.retriever.Search(ctx, query.NormalizedText, ranked[0])
	}

	return o.dispatcher.Dispatch(ctx, ranked, template)
}

func (o *Orchestrator) synthesize(ctx context.Context, query *models.Query, history *models.SessionContext, ranked []models.Category, results map[models.Category]*models.AgentResult) *models.SynthesizedResponse {
	defer o.timeStage("synthesis")()
	return o.synthesizer.Synthesize(ctx, query, history, ranked, results)
}

// localize translates the answer back to the query language. The apology
// path arrives already localized.
func (o *Orchestrator) localize(ctx context.Context, query *models.Query, resp *models.SynthesizedResponse) {
	if query.Language == "en" || resp.Language == query.Language {
		return
	}
	defer o.timeStage("localization")()

	translation := o.bridge.FromEnglish(ctx, resp.Answer, query.Language)
	resp.Answer = translation.Text
	if translation.Degraded {
		o.logger.Warn("outbound translation degraded", map[string]interface{}{
			"query_id": query.ID,
			"language": query.Language,
		})
		return
	}
	resp.Language = query.Language
}

func (o *Orchestrator) recordSession(ctx context.Context, query *models.Query, resp *models.SynthesizedResponse) {
	exchange := models.Exchange{
		Query:     query.RawText,
		Answer:    resp.Answer,
		Timestamp: time.Now().UTC(),
	}
	if err := o.sessions.Append(ctx, query.SessionID, exchange); err != nil {
		o.logger.Warn("session append failed", map[string]interface{}{
			"session_id": query.SessionID,
			"error":      err.Error(),
		})
	}
	if query.Location != "" {
		if err := o.sessions.SetContext(ctx, query.SessionID, map[string]string{"location": query.Location}); err != nil {
			o.logger.Warn("session context update failed", map[string]interface{}{
				"session_id": query.SessionID,
				"error":      err.Error(),
			})
		}
	}
}

// recordLog writes the audit record off the request context so a client
// disconnect does not lose it.
func (o *Orchestrator) recordLog(query *models.Query, resp *models.SynthesizedResponse) {
	if o.queryLog == nil {
		return
	}
	logCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	o.queryLog.Record(logCtx, query, resp)
}

// History exposes the session transcript for the session API.
func (o *Orchestrator) History(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	return o.sessions.Get(ctx, sessionID)
}

// ClearSession drops one session's memory.
func (o *Orchestrator) ClearSession(ctx context.Context, sessionID string) error {
	return o.sessions.Clear(ctx, sessionID)
}

// Health aggregates per-agent health for the health endpoint.
func (o *Orchestrator) Health(ctx context.Context) (agents.HealthState, map[models.Category]agents.Status) {
	return o.registry.Overall(ctx), o.registry.HealthCheck(ctx)
}

// Feedback records a user's rating of an answer.
func (o *Orchestrator) Feedback(ctx context.Context, fb *persistence.Feedback) error {
	if o.queryLog == nil {
		return nil
	}
	return o.queryLog.RecordFeedback(ctx, fb)
}

func (o *Orchestrator) timeStage(stage string) func() {
	begin := time.Now()
	return func() {
		metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(begin).Seconds())
	}
}
