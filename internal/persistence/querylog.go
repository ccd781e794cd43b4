// Package persistence writes the query audit trail and user feedback to
// Postgres. Both sinks are best-effort: the answer has already been produced
// by the time these run, so failures are logged and never propagated to the
// user.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	apperrors "agribot/internal/common/errors"
	"agribot/internal/common/logger"
	"agribot/internal/models"
)

const (
	insertQueryLogSQL = `INSERT INTO query_log
		(query_id, session_id, language, raw_text, normalized_text, categories, confidence, answer, processing_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	insertFeedbackSQL = `INSERT INTO feedback
		(query_id, session_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)`
)

// Feedback is a user's rating of one answer.
type Feedback struct {
	QueryID   string `json:"query_id"`
	SessionID string `json:"session_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

type QueryLog struct {
	db     *sql.DB
	logger logger.Logger
}

// NewQueryLog builds the Postgres sink. db may be nil, in which case every
// call is a silent no-op.
func NewQueryLog(db *sql.DB, log logger.Logger) *QueryLog {
	return &QueryLog{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "querylog"}),
	}
}

// Record persists one completed pipeline run.
func (q *QueryLog) Record(ctx context.Context, query *models.Query, resp *models.SynthesizedResponse) {
	if q.db == nil {
		return
	}

	categories, err := json.Marshal(resp.AgentsConsulted)
	if err != nil {
		categories = []byte("[]")
	}

	_, err = q.db.ExecContext(ctx, insertQueryLogSQL,
		query.ID,
		query.SessionID,
		query.Language,
		query.RawText,
		query.NormalizedText,
		string(categories),
		resp.Confidence,
		resp.Answer,
		int64(math.Round(resp.ProcessingTime*1000)),
		time.Now().UTC(),
	)
	if err != nil {
		q.logger.Warn("query log write failed", map[string]interface{}{
			"query_id": query.ID,
			"code":     string(apperrors.ErrCodeQueryLogFailed),
			"error":    err.Error(),
		})
	}
}

// RecordFeedback persists a feedback entry. Unlike Record, the caller serves
// an API response off this, so the error is returned.
func (q *QueryLog) RecordFeedback(ctx context.Context, fb *Feedback) error {
	if q.db == nil {
		return nil
	}

	_, err := q.db.ExecContext(ctx, insertFeedbackSQL,
		fb.QueryID,
		fb.SessionID,
		fb.Rating,
		fb.Comment,
		time.Now().UTC(),
	)
	if err != nil {
		q.logger.Warn("feedback write failed", map[string]interface{}{
			"query_id": fb.QueryID,
			"error":    err.Error(),
		})
	}
	return err
}
