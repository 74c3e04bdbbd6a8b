package metrics

import (
	"sort"
	"sync"
	"time"
)

type RequestSample struct {
	Route     string
	Method    string
	Status    int
	Latency   time.Duration
	Timestamp time.Time
}

// RouteSummary aggregates the samples of one method and route template.
type RouteSummary struct {
	Method        string  `json:"method"`
	Route         string  `json:"route"`
	Count         int     `json:"count"`
	Errors        int     `json:"errors"`
	MeanLatencyMs float64 `json:"meanLatencyMs"`
	MaxLatencyMs  float64 `json:"maxLatencyMs"`
	LastSeen      string  `json:"lastSeen"`
}

type routeKey struct {
	method string
	route  string
}

type routeAcc struct {
	count  int
	errors int
	total  time.Duration
	max    time.Duration
	last   time.Time
}

// Recorder keeps in-process request counters. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	routes map[routeKey]*routeAcc
}

func NewRecorder() *Recorder {
	return &Recorder{routes: make(map[routeKey]*routeAcc)}
}

func (r *Recorder) Observe(s RequestSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := routeKey{method: s.Method, route: s.Route}
	acc, ok := r.routes[k]
	if !ok {
		acc = &routeAcc{}
		r.routes[k] = acc
	}
	acc.count++
	if s.Status >= 500 {
		acc.errors++
	}
	acc.total += s.Latency
	acc.max = max(acc.max, s.Latency)
	if s.Timestamp.After(acc.last) {
		acc.last = s.Timestamp
	}
}

// Snapshot returns one summary per route ordered by route then method.
func (r *Recorder) Snapshot() []RouteSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RouteSummary, 0, len(r.routes))
	for k, acc := range r.routes {
		out = append(out, RouteSummary{
			Method:        k.method,
			Route:         k.route,
			Count:         acc.count,
			Errors:        acc.errors,
			MeanLatencyMs: ms(acc.total) / float64(acc.count),
			MaxLatencyMs:  ms(acc.max),
			LastSeen:      acc.last.UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Route != out[j].Route {
			return out[i].Route < out[j].Route
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
