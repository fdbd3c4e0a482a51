package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	core "github.com/raagalabs/carnaticguru/internal/agent/core"
	"github.com/raagalabs/carnaticguru/internal/router"
	"github.com/raagalabs/carnaticguru/internal/store"
)

type stubProcessor struct {
	reply core.AgentReply
	err   error
	got   core.UserQuery
}

func (s *stubProcessor) Process(ctx context.Context, q core.UserQuery) (core.AgentReply, error) {
	s.got = q
	return s.reply, s.err
}

func expectUserRow(mock sqlmock.Sqlmock, id, name string) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, avatar, color FROM users WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "avatar", "color"}).
			AddRow(id, name, "A", "#FF6B6B"))
}

func newQueryHandler(db *sqlmock.Sqlmock, proc QueryProcessor) (*QueryHandler, func()) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		panic(err)
	}
	*db = mock
	return &QueryHandler{
		Directory: newUserDirectory(&store.Store{DB: sqlDB}),
		Processor: proc,
		Logger:    log.New(log.Writer(), "[QUERY] ", log.LstdFlags),
	}, func() { sqlDB.Close() }
}

func TestQuerySuccess(t *testing.T) {
	e := echo.New()
	var mock sqlmock.Sqlmock
	proc := &stubProcessor{reply: core.AgentReply{
		Destination: router.DestinationRaga,
		Response:    "Mohanam uses s r g p d.",
	}}
	handler, closeDB := newQueryHandler(&mock, proc)
	defer closeDB()

	expectUserRow(mock, "learner_1", "Arjun")

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"user_id":"learner_1","query":"tell me about raga mohanam","category":"raga"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := handler.query(ctx); err != nil {
		t.Fatalf("query: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "Mohanam uses s r g p d." || resp.UserName != "Arjun" || resp.Category != "raga" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Tstamp == "" {
		t.Fatal("timestamp missing")
	}
	if proc.got.UserID != "learner_1" || proc.got.Category != "raga" {
		t.Fatalf("processor received %+v", proc.got)
	}
}

func TestQueryDefaultsCategoryToGeneral(t *testing.T) {
	e := echo.New()
	var mock sqlmock.Sqlmock
	proc := &stubProcessor{reply: core.AgentReply{Response: "ok"}}
	handler, closeDB := newQueryHandler(&mock, proc)
	defer closeDB()

	expectUserRow(mock, "learner_2", "Priya")

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"user_id":"learner_2","query":"first lesson"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := handler.query(e.NewContext(req, rec)); err != nil {
		t.Fatalf("query: %v", err)
	}

	var resp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Category != "General" {
		t.Fatalf("category = %q, want General", resp.Category)
	}
}

func TestQueryUnknownUser(t *testing.T) {
	e := echo.New()
	var mock sqlmock.Sqlmock
	handler, closeDB := newQueryHandler(&mock, &stubProcessor{})
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, avatar, color FROM users WHERE id = $1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "avatar", "color"}))

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"user_id":"ghost","query":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := handler.query(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestQueryMissingQuery(t *testing.T) {
	e := echo.New()
	var mock sqlmock.Sqlmock
	handler, closeDB := newQueryHandler(&mock, &stubProcessor{})
	defer closeDB()

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"user_id":"learner_1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := handler.query(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestQueryProcessorError(t *testing.T) {
	e := echo.New()
	var mock sqlmock.Sqlmock
	handler, closeDB := newQueryHandler(&mock, &stubProcessor{err: errors.New("agent timeout")})
	defer closeDB()

	expectUserRow(mock, "learner_1", "Arjun")

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"user_id":"learner_1","query":"lesson please"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := handler.query(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}

func TestQueryFallbackUserWhenDBDown(t *testing.T) {
	e := echo.New()
	var mock sqlmock.Sqlmock
	proc := &stubProcessor{reply: core.AgentReply{Response: "ok"}}
	handler, closeDB := newQueryHandler(&mock, proc)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, avatar, color FROM users WHERE id = $1`)).
		WithArgs("learner_3").
		WillReturnError(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"user_id":"learner_3","query":"lesson please"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := handler.query(e.NewContext(req, rec)); err != nil {
		t.Fatalf("query should fall back to built-in roster: %v", err)
	}

	var resp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserName != "Rohan" {
		t.Fatalf("user_name = %q, want Rohan", resp.UserName)
	}
}
