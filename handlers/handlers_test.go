package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/conorwd/raceql/db"
	"github.com/conorwd/raceql/llm"
	"github.com/conorwd/raceql/models"
	"github.com/conorwd/raceql/queryengine"
	"github.com/conorwd/raceql/store"
)

var testJWTKey = []byte("handlers-test-key")

// cannedModel always classifies queries as off-topic, which keeps handler
// tests away from the model-dependent answer paths.
type cannedModel struct{}

func (cannedModel) Classify(ctx context.Context, query string) (llm.Label, error) {
	return llm.LabelNotRacing, nil
}
func (cannedModel) Plan(ctx context.Context, query, schemaContext string) (json.RawMessage, error) {
	return nil, llm.ErrUnclassified
}
func (cannedModel) Render(ctx context.Context, query, content string) (string, error) {
	return "", nil
}
func (cannedModel) AnalysisPlan(ctx context.Context, query, schemaContext string) (json.RawMessage, error) {
	return nil, llm.ErrUnclassified
}
func (cannedModel) Analyze(ctx context.Context, query, plan, data string) (string, error) {
	return "", nil
}

func newTestHandler(t *testing.T) (*Handler, *store.Store) {
	t.Helper()
	handle, err := db.SetupSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { handle.Close() })
	if err := db.CreateTables(context.Background(), handle); err != nil {
		t.Fatalf("creating tables: %v", err)
	}

	st := store.New(handle, nil)
	exec := queryengine.NewExecutor(st, nil)
	answerer := queryengine.NewAnswerer(cannedModel{}, exec, nil, nil)
	return New(st, answerer, nil, testJWTKey, nil), st
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestSigninIssuesToken(t *testing.T) {
	h, st := newTestHandler(t)

	hash, err := HashPasswordForUser("conor", "s3cret")
	if err != nil {
		t.Fatalf("HashPasswordForUser: %v", err)
	}
	user := &models.User{Username: "conor", Password: hash}
	if _, err := st.DB().NewInsert().Model(user).Exec(context.Background()); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/signin", `{"username":"conor","password":"s3cret"}`)
	if err := h.Signin(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Signin: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["token"] == "" {
		t.Error("response carries no token")
	}
}

func TestSigninRejectsWrongPassword(t *testing.T) {
	h, st := newTestHandler(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	user := &models.User{Username: "conor", Password: string(hash)}
	if _, err := st.DB().NewInsert().Model(user).Exec(context.Background()); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/signin", `{"username":"conor","password":"wrong"}`)
	err := h.Signin(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("err = %v, want 401", err)
	}
}

func TestChatAssignsThreadAndSavesHistory(t *testing.T) {
	h, st := newTestHandler(t)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/chat", `{"query":"what's the weather"}`)
	ctx := e.NewContext(req, rec)
	ctx.Set("user_hash", "user-1")

	if err := h.Chat(ctx); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ThreadID == "" {
		t.Error("no thread id assigned")
	}
	if resp.Response == "" {
		t.Error("empty response text")
	}
	if resp.Queries != 1 {
		t.Errorf("queries = %d, want 1", resp.Queries)
	}

	rows, err := st.RecentChatHistory(context.Background(), resp.ThreadID, "user-1", 10)
	if err != nil {
		t.Fatalf("RecentChatHistory: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("history rows = %d, want 1", len(rows))
	}
	if rows[0].Query != "what's the weather" {
		t.Errorf("stored query = %q", rows[0].Query)
	}
}

func TestChatRejectsEmptyQuery(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/chat", `{"query":"   "}`)
	err := h.Chat(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("err = %v, want 400", err)
	}
}

func TestRaceOddsReturnsCurrentQuotes(t *testing.T) {
	h, st := newTestHandler(t)
	ctx := context.Background()

	if err := st.RecordOdds(ctx, "rac_1", "hrs_1", "bet365", models.Quote{Fractional: "5/1", Decimal: "6.0"}); err != nil {
		t.Fatalf("RecordOdds: %v", err)
	}
	if err := st.RecordOdds(ctx, "rac_1", "hrs_1", "bet365", models.Quote{Fractional: "4/1", Decimal: "5.0"}); err != nil {
		t.Fatalf("RecordOdds: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("race_id")
	c.SetParamValues("rac_1")

	if err := h.RaceOdds(c); err != nil {
		t.Fatalf("RaceOdds: %v", err)
	}

	var odds []models.Odds
	if err := json.Unmarshal(rec.Body.Bytes(), &odds); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(odds) != 1 {
		t.Fatalf("odds rows = %d, want only the current quote", len(odds))
	}
	if odds[0].Fractional != "4/1" {
		t.Errorf("fractional = %q, want the latest price", odds[0].Fractional)
	}
}

func TestSyncWithoutSyncerIsUnavailable(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("section")
	c.SetParamValues("courses")

	err := h.Sync(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusServiceUnavailable {
		t.Errorf("err = %v, want 503", err)
	}
}
