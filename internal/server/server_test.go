package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jgoulah/pumplog/internal/dashboard"
	"github.com/jgoulah/pumplog/internal/geometry"
)

const scenarioFeed = "header\n08.05.2025 10:00,60,No\n08.05.2025 15:00,80,Yes\n"

type stubFetcher struct {
	body string
	err  error
}

func (f stubFetcher) Fetch(ctx context.Context) (string, error) { return f.body, f.err }

func newTestServer(t *testing.T, f dashboard.Fetcher) (*Server, *dashboard.Dashboard) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, time.May, 8, 18, 45, 0, 0, time.UTC)
	p := dashboard.NewPipeline(f, dashboard.Options{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	d := dashboard.New(p, nil)
	return New(d, Options{Unit: "ml", Width: 600, Height: 300}), d
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: scenarioFeed})

	w := get(s, "/")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Thursday, May 8, 2025")
	assert.Contains(t, body, "<td>15:00</td><td>80 ml</td><td>Yes</td>")
	assert.Contains(t, body, "<td>10:00</td><td>60 ml</td><td>No</td>")
	assert.Contains(t, body, "Total: 140 ml")
	assert.NotContains(t, body, "No data recorded today")
	assert.NotContains(t, body, "sample data")
}

func TestIndexEmptyToday(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: "header\n07.05.2025 10:00,60,No\n"})

	body := get(s, "/").Body.String()
	assert.Contains(t, body, "No data recorded today")
	assert.Contains(t, body, "Total: 0 ml")
	assert.NotContains(t, body, "<table>")
}

func TestIndexFallbackNotice(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{err: errors.New("connection refused")})

	body := get(s, "/").Body.String()
	assert.Contains(t, body, "Showing generated sample data")
	assert.NotContains(t, body, "connection refused")
}

func TestCorrelationID(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: scenarioFeed})

	w := get(s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
}

func TestRequestLogLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	p := dashboard.NewPipeline(stubFetcher{body: scenarioFeed}, dashboard.Options{Location: time.UTC})
	s := New(dashboard.New(p, nil), Options{Logger: zap.New(core)})

	require.Equal(t, http.StatusOK, get(s, "/api/bubbles/hit?x=1&y=1").Code)
	require.Equal(t, http.StatusOK, get(s, "/healthz").Code)

	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 2)
	assert.Equal(t, zapcore.DebugLevel, requests[0].Level)
	assert.Equal(t, hitPath, requests[0].ContextMap()["path"])
	assert.Equal(t, zapcore.InfoLevel, requests[1].Level)
	assert.Equal(t, "/healthz", requests[1].ContextMap()["path"])
}

func TestIndexTooltipDropsStaleReplies(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: scenarioFeed})

	body := get(s, "/").Body.String()
	assert.Contains(t, body, "window.requestAnimationFrame(send)")
	assert.Contains(t, body, "var id = ++seq;")
	assert.Contains(t, body, "if (!inside || id !== seq) { return; }")
	assert.Contains(t, body, "window.cancelAnimationFrame(pending)")
	assert.Contains(t, body, "inside = false;")
}

func TestCharts(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: scenarioFeed})

	tests := []struct {
		target      string
		status      int
		contentType string
	}{
		{"/charts/weekly.svg", http.StatusOK, "image/svg+xml"},
		{"/charts/weekly.png?w=800&h=400", http.StatusOK, "image/png"},
		{"/charts/bubbles.svg?w=600", http.StatusOK, "image/svg+xml"},
		{"/charts/bubbles.PNG", http.StatusOK, "image/png"},
		{"/charts/weekly.gif", http.StatusNotFound, ""},
		{"/charts/pie.svg", http.StatusNotFound, ""},
		{"/charts/weekly", http.StatusNotFound, ""},
		{"/charts/weekly.svg?w=abc", http.StatusBadRequest, ""},
		{"/charts/weekly.svg?h=10", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(s, tt.target)
			assert.Equal(t, tt.status, w.Code)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
				assert.NotZero(t, w.Body.Len())
			}
		})
	}
}

type tooltipResponse struct {
	Hit    bool    `json:"hit"`
	Time   string  `json:"time"`
	Amount *int    `json:"amount_ml"`
	Text   string  `json:"text"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

func hit(t *testing.T, s *Server, target string) tooltipResponse {
	t.Helper()
	w := get(s, target)
	require.Equal(t, http.StatusOK, w.Code)
	var resp tooltipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHitBeforeRender(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: scenarioFeed})

	resp := hit(t, s, "/api/bubbles/hit?x=100&y=100")
	assert.False(t, resp.Hit)
}

func TestHitAfterRender(t *testing.T) {
	s, d := newTestServer(t, stubFetcher{body: scenarioFeed})

	require.Equal(t, http.StatusOK, get(s, "/charts/bubbles.svg?w=600&h=300").Code)

	layout := geometry.LayoutBubbles(d.Current().Bubbles, 600, 300)
	require.Len(t, layout.Bubbles, 2)
	b := layout.Bubbles[0] // newest first, the 15:00 session

	target := "/api/bubbles/hit?x=" + ftoa(b.Center.X) + "&y=" + ftoa(b.Center.Y) + "&px=200&py=150"
	first := hit(t, s, target)
	second := hit(t, s, target)

	assert.Equal(t, first, second)
	require.True(t, first.Hit)
	assert.Equal(t, "15:00", first.Time)
	require.NotNil(t, first.Amount)
	assert.Equal(t, 80, *first.Amount)
	assert.Equal(t, "Time: 15:00\nAmount: 80 ml", first.Text)
	assert.Equal(t, 215.0, first.Left)
	assert.Equal(t, 135.0, first.Top)

	miss := hit(t, s, "/api/bubbles/hit?x=0&y=0")
	assert.False(t, miss.Hit)
}

func TestHitBadQuery(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: scenarioFeed})
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/bubbles/hit?x=left&y=1").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/bubbles/hit").Code)
}

func TestAPIToday(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: scenarioFeed})

	w := get(s, "/api/today")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Date   string `json:"date"`
		Events []struct {
			Time   string `json:"time"`
			Amount int    `json:"amount_ml"`
			Flag   string `json:"flag"`
		} `json:"events"`
		Total  int    `json:"total_ml"`
		Empty  bool   `json:"empty"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "2025-05-08", resp.Date)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "15:00", resp.Events[0].Time)
	assert.Equal(t, 80, resp.Events[0].Amount)
	assert.Equal(t, 140, resp.Total)
	assert.False(t, resp.Empty)
	assert.Equal(t, "feed", resp.Source)
}

func TestAPIWeek(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: scenarioFeed})

	w := get(s, "/api/week")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Days []struct {
			Total     int `json:"total_ml"`
			Morning   int `json:"morning_ml"`
			Afternoon int `json:"afternoon_ml"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Days, 7)
	assert.Equal(t, 140, resp.Days[6].Total)
	assert.Equal(t, 60, resp.Days[6].Morning)
	assert.Equal(t, 80, resp.Days[6].Afternoon)
	assert.Zero(t, resp.Days[0].Total)
}

func TestAPIRefresh(t *testing.T) {
	s, d := newTestServer(t, stubFetcher{body: scenarioFeed})
	first := d.Refresh(context.Background())

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID     string `json:"id"`
		Events int    `json:"events"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEqual(t, first.ID.String(), resp.ID)
	assert.Equal(t, d.Current().ID.String(), resp.ID)
	assert.Equal(t, 2, resp.Events)
	assert.Equal(t, "feed", resp.Source)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, stubFetcher{body: scenarioFeed})
	get(s, "/charts/weekly.svg")

	w := get(s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pumplog_render_duration_seconds")
	assert.Contains(t, w.Body.String(), "pumplog_feed_fetch_total")
}
