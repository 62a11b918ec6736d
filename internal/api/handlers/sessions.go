package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearbooks/reconcile-backend/internal/api/dto"
	"github.com/clearbooks/reconcile-backend/internal/application/service"
	"github.com/clearbooks/reconcile-backend/internal/infrastructure/storage"
)

// SessionsHandler handles persisted-session HTTP requests.
type SessionsHandler struct {
	*Base
	svc *service.ReconcileService
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(svc *service.ReconcileService) *SessionsHandler {
	return &SessionsHandler{
		Base: &Base{},
		svc:  svc,
	}
}

// List handles GET /api/sessions - returns recent sessions, newest first.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	sessions, err := h.svc.ListSessions(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.SessionListResponse{
		Sessions: make([]dto.SessionResponse, 0, len(sessions)),
		Count:    len(sessions),
	}
	for _, session := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(session))
	}

	h.WriteSuccess(w, http.StatusOK, response)
}

// Get handles GET /api/sessions/{id} - returns a single session with matches.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("session ID is required"))
		return
	}

	session, err := h.svc.GetSession(sessionID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if session == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("session"))
		return
	}

	h.WriteSuccess(w, http.StatusOK, toSessionResponse(session))
}

// toSessionResponse converts a storage record to an API response.
func toSessionResponse(session *storage.ReconSession) dto.SessionResponse {
	response := dto.SessionResponse{
		ID:                      session.ID,
		CreatedAt:               session.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		StatementCount:          session.StatementCount,
		BookCount:               session.BookCount,
		MatchCount:              session.MatchCount,
		UnmatchedStatementCount: session.UnmatchedStatementCount,
		UnmatchedBookCount:      session.UnmatchedBookCount,
		Confidence:              session.Confidence,
		Matches:                 make([]dto.SessionMatchResponse, 0, len(session.Matches)),
	}

	for _, match := range session.Matches {
		response.Matches = append(response.Matches, dto.SessionMatchResponse{
			StatementID: match.StatementID,
			BookID:      match.BookID,
			Amount:      match.Amount,
			Score:       match.Score,
			Confidence:  match.Confidence,
			Criteria:    match.Criteria,
			Reason:      match.Reason,
		})
	}

	return response
}
