// Package mcptools exposes the dashboard views as MCP tools.
package mcptools

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lutefd/navi-api/internal/dashboard"
	"github.com/lutefd/navi-api/internal/domain/stats"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Views interface {
	SeasonStats(ctx context.Context) (stats.SeasonStats, error)
	Rankings(ctx context.Context, kind dashboard.RankingKind, limit int) ([]stats.RankingEntry, error)
	PlayerDetail(ctx context.Context, name string) (stats.PlayerDetail, error)
	MonthlyMatches(ctx context.Context, year int) (dashboard.MonthlyMatches, error)
}

type SeasonStatsArgs struct{}

type RankingsArgs struct {
	Kind  string `json:"kind" jsonschema:"Ranking kind: goals|assists|attendance (required)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum rows (0 = all)"`
}

type PlayerDetailArgs struct {
	Name string `json:"name" jsonschema:"Exact player name (required)"`
}

type MonthlyMatchesArgs struct {
	Year int `json:"year,omitempty" jsonschema:"Calendar year (0 = current)"`
}

type seasonResult struct {
	stats.SeasonStats
	Percentages stats.Percentages `json:"percentages"`
}

type Tools struct {
	views Views
}

func New(views Views) *Tools {
	return &Tools{views: views}
}

// NewServer builds an MCP server with every tool registered.
func (t *Tools) NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "navi-stats", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "season_stats",
		Description: "Matches played, wins, draws and losses of the latest season with win/draw/loss percentages.",
	}, t.SeasonStats)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "rankings",
		Description: "Player leaderboard by goals, assists or attendance.",
	}, t.Rankings)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "player_detail",
		Description: "Totals and per-match records of one player.",
	}, t.PlayerDetail)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "monthly_matches",
		Description: "Number of matches per calendar month for a year.",
	}, t.MonthlyMatches)
	return server
}

func (t *Tools) SeasonStats(ctx context.Context, _ *mcp.CallToolRequest, _ SeasonStatsArgs) (*mcp.CallToolResult, any, error) {
	s, err := t.views.SeasonStats(ctx)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(seasonResult{SeasonStats: s, Percentages: stats.ResultPercentages(s)})
}

func (t *Tools) Rankings(ctx context.Context, _ *mcp.CallToolRequest, args RankingsArgs) (*mcp.CallToolResult, any, error) {
	kind := strings.ToLower(strings.TrimSpace(args.Kind))
	if kind == "" {
		return toolError(errors.New("kind is required")), nil, nil
	}
	if args.Limit < 0 {
		return toolError(errors.New("limit must not be negative")), nil, nil
	}
	rows, err := t.views.Rankings(ctx, dashboard.RankingKind(kind), args.Limit)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(map[string]any{"kind": kind, "rows": rows})
}

func (t *Tools) PlayerDetail(ctx context.Context, _ *mcp.CallToolRequest, args PlayerDetailArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Name) == "" {
		return toolError(errors.New("name is required")), nil, nil
	}
	detail, err := t.views.PlayerDetail(ctx, args.Name)
	var nf *dashboard.PlayerNotFoundError
	if errors.As(err, &nf) && len(nf.Suggestions) > 0 {
		return toolError(fmt.Errorf("%w; did you mean %s", err, strings.Join(nf.Suggestions, ", "))), nil, nil
	}
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(detail)
}

func (t *Tools) MonthlyMatches(ctx context.Context, _ *mcp.CallToolRequest, args MonthlyMatchesArgs) (*mcp.CallToolResult, any, error) {
	out, err := t.views.MonthlyMatches(ctx, args.Year)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(out)
}

// WithAPIKey rejects requests whose X-API-Key header does not match key.
// An empty key leaves the handler open.
func WithAPIKey(key string, next http.Handler) http.Handler {
	key = strings.TrimSpace(key)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// RequestID returns the id WithRequestID attached to ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestID tags each request with X-Request-ID (or a fresh uuid),
// echoes it on the response and logs the call under it.
func WithRequestID(logger *slog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		logger.Debug("mcp request",
			"request_id", id,
			"method", r.Method,
			"remote", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(raw)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
