package http

import (
	"log/slog"
	"net/http"

	"infinance/internal/core"
)

const (
	summaryCacheKey = "summary"
	goalsCacheKey   = "goals"
)

// transactionRequest is the wire shape for creating or editing an entry.
type transactionRequest struct {
	Date         core.Date  `json:"date"`
	Description  string     `json:"description"`
	Value        core.Money `json:"value"`
	Kind         string     `json:"type"`
	CategoryID   string     `json:"categoryId"`
	InvestmentID string     `json:"investmentId"`
	Withdrawal   bool       `json:"isWithdrawal"`
}

func (req transactionRequest) draft() core.Draft {
	return core.Draft{
		Date:         req.Date,
		Description:  req.Description,
		Value:        req.Value,
		Kind:         core.TransactionKind(req.Kind),
		CategoryID:   req.CategoryID,
		InvestmentID: req.InvestmentID,
		Withdrawal:   req.Withdrawal,
	}
}

// admissionResponse carries the stored transaction plus the goal signal,
// when the write completed one.
type admissionResponse struct {
	Transaction   core.Transaction    `json:"transaction"`
	GoalCompleted *core.GoalCompleted `json:"goalCompleted,omitempty"`
}

type summaryResponse struct {
	TotalIncome   core.Money `json:"totalIncome"`
	TotalExpenses core.Money `json:"totalExpenses"`
	TotalInvested core.Money `json:"totalInvested"`
	Balance       core.Money `json:"balance"`
}

type goalResponse struct {
	core.Investment
	CalculatedValue core.Money `json:"calculatedValue"`
	Percent         float64    `json:"percent"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_input", Message: "malformed body"}})
		return
	}

	tx, completed, err := s.ledger.CreateTransaction(r.Context(), req.draft())
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, admissionResponse{Transaction: tx, GoalCompleted: completed})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_input", Message: "malformed body"}})
		return
	}

	tx, completed, err := s.ledger.UpdateTransaction(r.Context(), r.PathValue("id"), req.draft())
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusOK, admissionResponse{Transaction: tx, GoalCompleted: completed})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeBody(r, &c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_input", Message: "malformed body"}})
		return
	}
	c.ID = ""
	saved, err := s.ledger.SaveCategory(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeBody(r, &c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_input", Message: "malformed body"}})
		return
	}
	c.ID = r.PathValue("id")
	saved, err := s.ledger.SaveCategory(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	invs, err := s.ledger.ListInvestments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invs)
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var inv core.Investment
	if err := decodeBody(r, &inv); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_input", Message: "malformed body"}})
		return
	}
	inv.ID = ""
	saved, err := s.ledger.SaveInvestment(r.Context(), inv)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	var inv core.Investment
	if err := decodeBody(r, &inv); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_input", Message: "malformed body"}})
		return
	}
	inv.ID = r.PathValue("id")
	saved, err := s.ledger.SaveInvestment(r.Context(), inv)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteInvestment(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, found := s.summaryCache.Get(summaryCacheKey)
	if !found {
		var err error
		sum, err = s.ledger.Summary(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		s.summaryCache.Set(summaryCacheKey, sum)
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:   sum.TotalIncome,
		TotalExpenses: sum.TotalExpenses,
		TotalInvested: sum.TotalInvested,
		Balance:       sum.Balance(),
	})
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	goals, found := s.goalsCache.Get(goalsCacheKey)
	if !found {
		var err error
		goals, err = s.ledger.Goals(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		s.goalsCache.Set(goalsCacheKey, goals)
	}

	out := make([]goalResponse, len(goals))
	for i, g := range goals {
		out[i] = goalResponse{Investment: g.Investment, CalculatedValue: g.Calculated, Percent: g.Percent}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.ExportSnapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="infinance-backup.json"`)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	// The decode is lenient on purpose: old exports with extra fields or
	// missing sections still import.
	data, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_input", Message: "unreadable body"}})
		return
	}
	snap, err := s.ledger.ImportSnapshot(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusOK, snap)
}

type themeRequest struct {
	Theme core.Theme `json:"theme"`
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_input", Message: "malformed body"}})
		return
	}
	if req.Theme != core.ThemeLight && req.Theme != core.ThemeDark {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "invalid_input", Message: "unknown theme"}})
		return
	}
	if err := s.ledger.SetTheme(r.Context(), req.Theme); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
