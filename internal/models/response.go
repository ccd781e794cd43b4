package models

// Caveat records one failed agent in a partially-covered answer.
type Caveat struct {
	Agent Category `json:"agent"`
	Code  string   `json:"code"`
}

// SynthesizedResponse is the single answer produced for every query. Errors
// degrade it, they never make it absent.
type SynthesizedResponse struct {
	Answer            string     `json:"answer"`
	Confidence        float64    `json:"confidence"` // always in [0,1]
	Sources           []string   `json:"sources"`
	Recommendations   []string   `json:"recommendations"`
	Caveats           []Caveat   `json:"caveats,omitempty"`
	FollowUpQuestions []string   `json:"follow_up_questions"`
	AgentsConsulted   []Category `json:"agents_consulted"`
	Language          string     `json:"language"`
	SessionID         string     `json:"session_id"`
	ProcessingTime    float64    `json:"processing_time"` // seconds
}
