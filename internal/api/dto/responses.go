package dto

import "time"

// Envelope wraps every API response. Success responses carry Data; error
// responses carry Error.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// SuccessEnvelope wraps data in a success envelope.
func SuccessEnvelope(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// ErrorEnvelope wraps an API error in an envelope.
func ErrorEnvelope(err APIError) Envelope {
	return Envelope{Success: false, Error: &err}
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
// Status is degraded when the database cannot be reached.
func NewHealthResponse(databaseOK bool) HealthResponse {
	response := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if !databaseOK {
		response.Status = "degraded"
		response.Database = "unreachable"
	}
	return response
}

// MatchResultResponse is the outcome of one reconciliation run.
type MatchResultResponse struct {
	SessionID           string              `json:"session_id"`
	Matches             []MatchResponse     `json:"matches"`
	UnmatchedStatements []UnmatchedResponse `json:"unmatched_statements"`
	UnmatchedBooks      []UnmatchedResponse `json:"unmatched_books"`
	Confidence          float64             `json:"confidence"`
	AIInsights          []string            `json:"ai_insights,omitempty"`
}

// MatchResponse is one accepted pairing.
type MatchResponse struct {
	Statement  TransactionPayload `json:"statement"`
	Book       TransactionPayload `json:"book"`
	Score      float64            `json:"score"`
	Confidence float64            `json:"confidence"`
	Criteria   string             `json:"criteria"`
	Reason     string             `json:"reason"`
}

// UnmatchedResponse is a transaction with no accepted pairing.
type UnmatchedResponse struct {
	Transaction TransactionPayload `json:"transaction"`
	Note        string             `json:"note,omitempty"`
}

// SessionResponse summarizes a persisted reconciliation session.
type SessionResponse struct {
	ID                      string                 `json:"id"`
	CreatedAt               string                 `json:"created_at"`
	StatementCount          int                    `json:"statement_count"`
	BookCount               int                    `json:"book_count"`
	MatchCount              int                    `json:"match_count"`
	UnmatchedStatementCount int                    `json:"unmatched_statement_count"`
	UnmatchedBookCount      int                    `json:"unmatched_book_count"`
	Confidence              float64                `json:"confidence"`
	Matches                 []SessionMatchResponse `json:"matches,omitempty"`
}

// SessionMatchResponse is one persisted match row.
type SessionMatchResponse struct {
	StatementID string  `json:"statement_id"`
	BookID      string  `json:"book_id"`
	Amount      string  `json:"amount"`
	Score       float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
	Criteria    string  `json:"criteria"`
	Reason      string  `json:"reason"`
}

// SessionListResponse is returned when listing sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count"`
}
