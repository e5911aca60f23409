// Package server exposes the dashboard over HTTP. The query string is the
// parameter map; the prior scope travels in a cookie.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/dashboard"
	"github.com/KaramelBytes/hdiview/internal/export"
	"github.com/KaramelBytes/hdiview/internal/metrics"
	"github.com/KaramelBytes/hdiview/internal/params"
	"github.com/KaramelBytes/hdiview/internal/render"
)

// ScopeCookie carries the persisted world flag between requests.
const ScopeCookie = "hdiview_world"

// Server is the HTTP host.
type Server struct {
	engine *dashboard.Engine
	chart  render.Options
	logger *slog.Logger
}

// New returns a server backed by engine.
func New(engine *dashboard.Engine, chart render.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, chart: chart, logger: logger}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/view", s.handleView)
	api.GET("/chart.png", s.handleChart)
	api.GET("/export.csv", s.handleExport("csv"))
	api.GET("/export.xlsx", s.handleExport("xlsx"))
	api.POST("/scope/:scope", s.handleScope)
	api.GET("/catalog", s.handleCatalog)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

// priorScope reads the scope cookie, defaulting to World.
func priorScope(c *gin.Context) catalog.Scope {
	v, err := c.Cookie(ScopeCookie)
	if err != nil {
		return catalog.ScopeWorld
	}
	if sc, ok := catalog.ParseScope(v); ok {
		return sc
	}
	return catalog.ScopeWorld
}

func setScope(c *gin.Context, sc catalog.Scope) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ScopeCookie, strconv.FormatBool(sc == catalog.ScopeWorld), 0, "/", "", false, true)
}

// pass runs the dashboard for the request and writes the scope cookie back.
func (s *Server) pass(c *gin.Context, raw params.Values) dashboard.Result {
	res := s.engine.Run(c.Request.Context(), raw, priorScope(c))
	setScope(c, res.State.Scope)
	return res
}

func (s *Server) handleView(c *gin.Context) {
	c.JSON(http.StatusOK, s.pass(c, params.DecodeQuery(c.Request.URL.Query())))
}

func (s *Server) handleChart(c *gin.Context) {
	res := s.pass(c, params.DecodeQuery(c.Request.URL.Query()))
	var buf bytes.Buffer
	if err := render.PNG(&buf, res.Chart, s.chart); err != nil {
		s.logger.Error("render failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", res.FileStem+".png"))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleExport(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := s.pass(c, params.DecodeQuery(c.Request.URL.Query()))
		if !res.Downloads {
			c.JSON(http.StatusNotFound, gin.H{"error": "downloads are available for world scope with selected countries"})
			return
		}
		t := export.BuildTable(c.Request.Context(), s.engine.Store, res.State, s.logger)

		var (
			buf  bytes.Buffer
			err  error
			mime string
		)
		switch format {
		case "xlsx":
			err = export.WriteXLSX(&buf, t)
			mime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		default:
			err = export.WriteCSV(&buf, t)
			mime = "text/csv"
		}
		if err != nil {
			s.logger.Error("export failed", "format", format, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.ObserveExport(format)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(res.State, "."+format)))
		c.Data(http.StatusOK, mime, buf.Bytes())
	}
}

// handleScope persists the new scope flag and restarts the pass with it.
func (s *Server) handleScope(c *gin.Context) {
	sc, ok := catalog.ParseScope(c.Param("scope"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown scope %q", c.Param("scope"))})
		return
	}
	raw := dashboard.Toggle(params.DecodeQuery(c.Request.URL.Query()), priorScope(c), sc)
	c.JSON(http.StatusOK, s.pass(c, raw))
}

// CatalogResponse lists the options selectable in one scope.
type CatalogResponse struct {
	Scope           string           `json:"scope"`
	Metrics         []catalog.Metric `json:"metrics"`
	OtherIndicators []catalog.Metric `json:"other_indicators"`
	Entities        []string         `json:"entities"`
	Comparison      []string         `json:"comparison,omitempty"`
	Genders         []catalog.Gender `json:"genders"`
	Notes           string           `json:"notes"`
}

func (s *Server) handleCatalog(c *gin.Context) {
	sc := priorScope(c)
	if q := c.Query("scope"); q != "" {
		parsed, ok := catalog.ParseScope(q)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown scope %q", q)})
			return
		}
		sc = parsed
	}
	c.JSON(http.StatusOK, Catalog(s.engine.Catalog, sc))
}

// Catalog builds the catalog response for a scope.
func Catalog(cat *catalog.Catalog, sc catalog.Scope) CatalogResponse {
	resp := CatalogResponse{
		Scope:           sc.String(),
		Metrics:         catalog.Metrics(sc),
		OtherIndicators: catalog.OtherIndicators(sc),
		Genders:         catalog.Genders,
		Notes:           catalog.DataNotes,
	}
	if sc == catalog.ScopeIndia {
		resp.Entities = cat.States
	} else {
		resp.Entities = cat.Countries
		resp.Comparison = cat.States
	}
	return resp
}
