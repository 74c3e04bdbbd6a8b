package mcptools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lutefd/navi-api/internal/dashboard"
	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/domain/stats"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type viewsFake struct {
	lastKind  dashboard.RankingKind
	lastLimit int
}

func (f *viewsFake) SeasonStats(context.Context) (stats.SeasonStats, error) {
	return stats.SeasonStats{SeasonYear: 2026, TotalMatches: 3, Wins: 2, Losses: 1}, nil
}

func (f *viewsFake) Rankings(_ context.Context, kind dashboard.RankingKind, limit int) ([]stats.RankingEntry, error) {
	f.lastKind, f.lastLimit = kind, limit
	if kind != dashboard.RankGoals {
		return nil, matches.ErrInvalidInput
	}
	return []stats.RankingEntry{{Rank: 1, PlayerName: "장현규", Value: 4}}, nil
}

func (f *viewsFake) PlayerDetail(_ context.Context, name string) (stats.PlayerDetail, error) {
	if name != "장현규" {
		return stats.PlayerDetail{}, &dashboard.PlayerNotFoundError{Name: name, Suggestions: []string{"장현규"}}
	}
	return stats.PlayerDetail{PlayerName: name, Goals: 4}, nil
}

func (f *viewsFake) MonthlyMatches(_ context.Context, year int) (dashboard.MonthlyMatches, error) {
	return dashboard.MonthlyMatches{Year: year, Total: 1}, nil
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content")
	}
	return tc.Text
}

func TestSeasonStatsTool(t *testing.T) {
	res, _, err := New(&viewsFake{}).SeasonStats(context.Background(), nil, SeasonStatsArgs{})
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v", err)
	}
	var out struct {
		SeasonYear  int               `json:"seasonYear"`
		Percentages stats.Percentages `json:"percentages"`
	}
	if err := json.Unmarshal([]byte(text(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SeasonYear != 2026 || out.Percentages.Win != 67 || out.Percentages.Loss != 33 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestRankingsTool(t *testing.T) {
	views := &viewsFake{}
	tools := New(views)

	res, _, _ := tools.Rankings(context.Background(), nil, RankingsArgs{Kind: " Goals ", Limit: 5})
	if res.IsError || views.lastKind != dashboard.RankGoals || views.lastLimit != 5 {
		t.Fatalf("unexpected call: %+v %s", views, text(t, res))
	}
	if !strings.Contains(text(t, res), "장현규") {
		t.Fatalf("expected leader in payload: %s", text(t, res))
	}

	for _, args := range []RankingsArgs{{}, {Kind: "goals", Limit: -1}, {Kind: "saves"}} {
		res, _, _ := tools.Rankings(context.Background(), nil, args)
		if !res.IsError {
			t.Fatalf("expected tool error for %+v", args)
		}
	}
}

func TestPlayerDetailToolSuggests(t *testing.T) {
	res, _, _ := New(&viewsFake{}).PlayerDetail(context.Background(), nil, PlayerDetailArgs{Name: "장현"})
	if !res.IsError || !strings.Contains(text(t, res), "did you mean 장현규") {
		t.Fatalf("expected suggestion, got %s", text(t, res))
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	if New(&viewsFake{}).NewServer("test") == nil {
		t.Fatalf("expected server")
	}
}

func TestWithAPIKey(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := WithAPIKey("k", ok)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req.Header.Set("X-API-Key", "k")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	WithAPIKey("", ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open handler without key, got %d", rec.Code)
	}
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID(nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("expected the caller's id to be kept, got ctx=%q header=%q", seen, rec.Header().Get("X-Request-ID"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	if seen == "" || seen == "abc-123" || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected a fresh id in ctx and header, got ctx=%q header=%q", seen, rec.Header().Get("X-Request-ID"))
	}
}
