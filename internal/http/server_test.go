package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"infinance/internal/core"
	"infinance/internal/service"
	"infinance/internal/store/memory"
)

func newTestServer() *Server {
	return NewServer(":0", service.NewLedgerService(memory.New(), nil), 1000)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer()
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateTransactionFlow(t *testing.T) {
	srv := newTestServer()

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date": "2025-03-01", "description": "salary", "value": 3000, "type": "income", "categoryId": "cat_1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created admissionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Transaction.ID == "" {
		t.Fatal("created transaction has no id")
	}
	if created.GoalCompleted != nil {
		t.Fatalf("unexpected goal signal: %+v", created.GoalCompleted)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if rr.Code != 200 {
		t.Fatalf("summary status=%d", rr.Code)
	}
	var sum summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if !sum.Balance.Equal(core.MoneyFromInt(3000)) {
		t.Errorf("balance = %s, want 3000", sum.Balance)
	}
}

func TestOverspendReturns422(t *testing.T) {
	srv := newTestServer()

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date": "2025-03-01", "description": "salary", "value": 100, "type": "income", "categoryId": "cat_1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("seed status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date": "2025-03-02", "description": "splurge", "value": 500, "type": "expense", "categoryId": "cat_3"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overspend status=%d body=%s", rr.Code, rr.Body.String())
	}
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != "insufficient_balance" {
		t.Errorf("error code = %q", body.Error.Code)
	}
	if body.Error.Balance == nil || !body.Error.Balance.Equal(core.MoneyFromInt(100)) {
		t.Errorf("error balance = %v", body.Error.Balance)
	}
}

func TestInvalidDraftReturns400(t *testing.T) {
	srv := newTestServer()
	rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date": "2025-03-01", "description": "x", "value": 10, "type": "income"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGoalCompletionSurfacesInResponse(t *testing.T) {
	srv := newTestServer()

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date": "2025-03-01", "description": "salary", "value": 5000, "type": "income", "categoryId": "cat_1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("seed status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/investments",
		`{"name": "House", "goalValue": 1000}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("investment status=%d body=%s", rr.Code, rr.Body.String())
	}
	var inv core.Investment
	if err := json.Unmarshal(rr.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode investment: %v", err)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date": "2025-03-02", "value": 1000, "type": "investment", "investmentId": "`+inv.ID+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("deposit status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp admissionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.GoalCompleted == nil || resp.GoalCompleted.InvestmentID != inv.ID {
		t.Fatalf("expected goal signal, got %+v", resp.GoalCompleted)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/goals", "")
	if rr.Code != 200 {
		t.Fatalf("goals status=%d", rr.Code)
	}
	var goals []goalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &goals); err != nil {
		t.Fatalf("decode goals: %v", err)
	}
	if len(goals) != 1 || goals[0].Percent != 100 {
		t.Fatalf("goals = %+v", goals)
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	srv := newTestServer()

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date": "2025-03-01", "description": "salary", "value": 100, "type": "income", "categoryId": "cat_1"}`)
	var created admissionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := created.Transaction.ID

	rr = doJSON(t, srv, http.MethodPut, "/api/transactions/"+id,
		`{"date": "2025-03-01", "description": "salary (fixed)", "value": 200, "type": "income", "categoryId": "cat_1"}`)
	if rr.Code != 200 {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/transactions/missing",
		`{"date": "2025-03-01", "description": "x", "value": 1, "type": "income", "categoryId": "cat_1"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("update missing status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+id, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+id, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("double delete status=%d", rr.Code)
	}
}

func TestSnapshotExportImport(t *testing.T) {
	srv := newTestServer()

	rr := doJSON(t, srv, http.MethodPost, "/api/snapshot", `{
		"transactions": [
			{"id": "t1", "date": "2025-03-01", "description": "salary", "value": 1000, "type": "income", "categoryId": "cat_1"}
		],
		"theme": "dark"
	}`)
	if rr.Code != 200 {
		t.Fatalf("import status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/snapshot", "")
	if rr.Code != 200 {
		t.Fatalf("export status=%d", rr.Code)
	}
	snap := core.DecodeSnapshot(rr.Body.Bytes())
	if len(snap.Transactions) != 1 || snap.Transactions[0].ID != "t1" {
		t.Fatalf("exported = %+v", snap.Transactions)
	}
	if snap.Theme != core.ThemeDark {
		t.Errorf("theme = %q", snap.Theme)
	}
}

func TestSummaryCacheInvalidation(t *testing.T) {
	srv := newTestServer()

	rr := doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if rr.Code != 200 {
		t.Fatalf("summary status=%d", rr.Code)
	}

	// A write must not be masked by the cached zero summary.
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date": "2025-03-01", "description": "salary", "value": 100, "type": "income", "categoryId": "cat_1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/summary", "")
	var sum summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sum.Balance.Equal(core.MoneyFromInt(100)) {
		t.Errorf("balance = %s, want 100", sum.Balance)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	srv := NewServer(":0", service.NewLedgerService(memory.New(), nil), 2)

	body := `{"date": "2025-03-01", "description": "salary", "value": 1, "type": "income", "categoryId": "cat_1"}`
	var last int
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
		req.RemoteAddr = "10.0.0.1:1234"
		srv.Handler.ServeHTTP(rr, req)
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third mutation status=%d, want 429", last)
	}

	// Reads are never limited.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("read status=%d", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer()
	rr := doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
