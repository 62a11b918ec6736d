package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clearbooks/reconcile-backend/internal/api/dto"
	"github.com/clearbooks/reconcile-backend/internal/application/service"
	"github.com/clearbooks/reconcile-backend/internal/domain/matcher"
)

// ReconcileHandler handles reconciliation HTTP requests.
type ReconcileHandler struct {
	*Base
	svc      *service.ReconcileService
	defaults matcher.Options
}

// NewReconcileHandler creates a new reconcile handler. The defaults are the
// deployment-level matching options; requests may override them per call.
func NewReconcileHandler(svc *service.ReconcileService, defaults matcher.Options) *ReconcileHandler {
	return &ReconcileHandler{
		Base:     &Base{},
		svc:      svc,
		defaults: defaults,
	}
}

// Reconcile handles POST /api/reconcile - runs a matching session.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	// Empty arrays are valid input; absent arrays are not.
	if req.StatementTransactions == nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("statement_transactions is required"))
		return
	}
	if req.BookTransactions == nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("book_transactions is required"))
		return
	}

	statements, err := toDomainTransactions(req.StatementTransactions)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	books, err := toDomainTransactions(req.BookTransactions)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	serviceReq := service.ReconcileRequest{
		SessionID:  req.SessionID,
		Statements: statements,
		Books:      books,
		Options:    req.Options.Apply(h.defaults),
	}

	result, err := h.svc.Reconcile(r.Context(), serviceReq)
	if err != nil {
		var invalid *matcher.InvalidInputError
		if errors.As(err, &invalid) {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(invalid.Error()))
			return
		}
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteSuccess(w, http.StatusOK, toMatchResultResponse(result))
}

// toDomainTransactions converts wire payloads to engine transactions. A nil
// payload (JSON null in the array) passes through as a nil transaction so
// the engine rejects it as a contract violation.
func toDomainTransactions(payloads []*dto.TransactionPayload) ([]*matcher.Transaction, error) {
	txns := make([]*matcher.Transaction, 0, len(payloads))
	for _, p := range payloads {
		if p == nil {
			txns = append(txns, nil)
			continue
		}
		t, err := p.ToDomain()
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// toMatchResultResponse converts a service result to an API response.
func toMatchResultResponse(result *service.ReconcileResult) dto.MatchResultResponse {
	response := dto.MatchResultResponse{
		SessionID:           result.SessionID,
		Matches:             make([]dto.MatchResponse, 0, len(result.Matches)),
		UnmatchedStatements: make([]dto.UnmatchedResponse, 0, len(result.UnmatchedStatements)),
		UnmatchedBooks:      make([]dto.UnmatchedResponse, 0, len(result.UnmatchedBooks)),
		Confidence:          result.Confidence,
		AIInsights:          result.Insights,
	}

	for _, m := range result.Matches {
		response.Matches = append(response.Matches, dto.MatchResponse{
			Statement:  toTransactionPayload(m.Statement),
			Book:       toTransactionPayload(m.Book),
			Score:      m.Score,
			Confidence: m.Confidence,
			Criteria:   string(m.Criteria),
			Reason:     m.Reason,
		})
	}

	for _, u := range result.UnmatchedStatements {
		response.UnmatchedStatements = append(response.UnmatchedStatements, dto.UnmatchedResponse{
			Transaction: toTransactionPayload(u.Transaction),
			Note:        u.Note,
		})
	}

	for _, u := range result.UnmatchedBooks {
		response.UnmatchedBooks = append(response.UnmatchedBooks, dto.UnmatchedResponse{
			Transaction: toTransactionPayload(u.Transaction),
			Note:        u.Note,
		})
	}

	return response
}

func toTransactionPayload(t *matcher.Transaction) dto.TransactionPayload {
	payload := dto.TransactionPayload{
		ID:          t.ID,
		Amount:      t.Amount,
		Description: t.Description,
		Reference:   t.Reference,
	}
	if !t.Date.IsZero() {
		payload.Date = t.Date.Format("2006-01-02")
	}
	return payload
}
