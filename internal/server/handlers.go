package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jgoulah/pumplog/internal/dashboard"
	"github.com/jgoulah/pumplog/internal/geometry"
	"github.com/jgoulah/pumplog/internal/metrics"
	"github.com/jgoulah/pumplog/internal/render"
	"github.com/jgoulah/pumplog/pkg/models"
)

const (
	// LongDateLayout is the header date, e.g. "Thursday, May 8, 2025"
	LongDateLayout = "Monday, January 2, 2006"

	minSurface = 50
	maxSurface = 4000
)

type eventRow struct {
	Time   string        `json:"time"`
	Amount models.Volume `json:"amount_ml"`
	Flag   string        `json:"flag"`
}

type todayResponse struct {
	Date     string        `json:"date"`
	LongDate string        `json:"long_date"`
	Events   []eventRow    `json:"events"`
	Total    models.Volume `json:"total_ml"`
	Empty    bool          `json:"empty"`
	Source   string        `json:"source"`
}

type pageData struct {
	LongDate string
	Rows     []pageRow
	Total    string
	Empty    bool
	Updated  string
	Sample   bool
	Width    int
	Height   int
}

type pageRow struct {
	Time, Amount, Flag string
}

func rows(snap *dashboard.Snapshot) []eventRow {
	out := make([]eventRow, 0, len(snap.Today.Events))
	for _, e := range snap.Today.Events {
		out = append(out, eventRow{Time: e.TimeLabel(), Amount: e.Amount, Flag: e.Flag})
	}
	return out
}

func (s *Server) handleIndex(c *gin.Context) {
	var snap *dashboard.Snapshot
	if s.opts.RefreshOnLoad {
		snap = s.dash.Refresh(c.Request.Context())
	} else {
		snap = s.dash.Snapshot(c.Request.Context())
	}

	data := pageData{
		LongDate: snap.BuiltAt.Format(LongDateLayout),
		Total:    "Total: " + snap.Today.Total.String() + " " + s.opts.Unit,
		Empty:    snap.Today.Empty(),
		Updated:  humanize.Time(snap.BuiltAt),
		Sample:   snap.Source == dashboard.SourceSample,
		Width:    s.opts.Width,
		Height:   s.opts.Height,
	}
	for _, r := range rows(snap) {
		data.Rows = append(data.Rows, pageRow{
			Time:   r.Time,
			Amount: r.Amount.String() + " " + s.opts.Unit,
			Flag:   r.Flag,
		})
	}

	c.HTML(http.StatusOK, "index", data)
}

// handleChart serves /charts/{weekly,bubbles}.{svg,png}?w=&h=
func (s *Server) handleChart(c *gin.Context) {
	name, ext, ok := strings.Cut(c.Param("file"), ".")
	if !ok || (name != "weekly" && name != "bubbles") {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart"})
		return
	}
	format, err := render.ParseFormat(ext)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	width, err := surfaceParam(c, "w", s.opts.Width)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	height, err := surfaceParam(c, "h", s.opts.Height)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := s.dash.Snapshot(c.Request.Context())
	start := time.Now()

	var buf bytes.Buffer
	switch name {
	case "weekly":
		err = render.WeeklyChart(&buf, format, geometry.LayoutBars(snap.Week, width, height))
	case "bubbles":
		layout := geometry.LayoutBubbles(snap.Bubbles, width, height)
		err = render.BubbleChart(&buf, format, layout)
		if err == nil {
			s.dash.SetHitRegions(layout.HitRegions())
		}
	}
	metrics.RenderDuration.WithLabelValues(name, string(format)).Observe(time.Since(start).Seconds())

	if err != nil {
		s.log.Error("chart render failed",
			zap.String("correlation_id", GetCorrelationID(c)),
			zap.String("chart", name),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// surfaceParam reads a pixel size query parameter
func surfaceParam(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minSurface || n > maxSurface {
		return 0, fmt.Errorf("invalid %s %q: want an integer between %d and %d", key, raw, minSurface, maxSurface)
	}
	return n, nil
}

// handleHit hit-tests x,y (bubble chart pixels) against the last render.
// px,py is where the pointer is on the page; the tooltip is placed relative
// to it.
func (s *Server) handleHit(c *gin.Context) {
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x and y must be numbers"})
		return
	}

	px, py := x, y
	if v, err := strconv.ParseFloat(c.Query("px"), 64); err == nil {
		px = v
	}
	if v, err := strconv.ParseFloat(c.Query("py"), 64); err == nil {
		py = v
	}

	c.JSON(http.StatusOK, s.dash.Tooltip(x, y, px, py, s.opts.Unit))
}

func (s *Server) handleToday(c *gin.Context) {
	snap := s.dash.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, todayResponse{
		Date:     snap.Today.Date.Format("2006-01-02"),
		LongDate: snap.BuiltAt.Format(LongDateLayout),
		Events:   rows(snap),
		Total:    snap.Today.Total,
		Empty:    snap.Today.Empty(),
		Source:   string(snap.Source),
	})
}

func (s *Server) handleWeek(c *gin.Context) {
	snap := s.dash.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"source": snap.Source,
		"days":   snap.Week,
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	snap := s.dash.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"id":          snap.ID,
		"built_at":    snap.BuiltAt,
		"source":      snap.Source,
		"fetch_error": snap.FetchError,
		"issues":      len(snap.Issues),
		"events":      len(snap.Events),
	})
}
