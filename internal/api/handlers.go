package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oakmoth/sitescout/internal/db"
	"github.com/oakmoth/sitescout/internal/observability"
	"github.com/oakmoth/sitescout/internal/sitemap"
	"github.com/oakmoth/sitescout/internal/util"
)

// Version is the current API version (can be set via ldflags at build time)
var Version = "0.2.0"

// SitemapService is the collection surface the handlers drive
type SitemapService interface {
	Collect(ctx context.Context, baseURLs []string, opts *sitemap.Options) (*sitemap.Result, error)
	DiscoverSitemaps(ctx context.Context, baseURL string, opts *sitemap.Options) ([]string, bool)
	FindSitemapByProbing(ctx context.Context, rawURL string) (string, bool)
}

// HarvestStore persists harvest outcomes. It is nil when the service
// runs without a database.
type HarvestStore interface {
	RecordHarvest(ctx context.Context, baseURLs []string, urlCount int, errs []string, duration time.Duration) (string, error)
	GetHarvest(ctx context.Context, id string) (*db.Harvest, error)
	RecentHarvests(ctx context.Context, limit int) ([]db.Harvest, error)
	Health(ctx context.Context) error
}

// Handler holds dependencies for API handlers
type Handler struct {
	Sitemaps SitemapService
	Store    HarvestStore
}

// NewHandler creates a new API handler with dependencies
func NewHandler(sitemaps SitemapService, store HarvestStore) *Handler {
	return &Handler{
		Sitemaps: sitemaps,
		Store:    store,
	}
}

// SetupRoutes configures all API routes
func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	// Health check endpoints
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/db", h.DatabaseHealthCheck)

	// V1 API routes
	mux.HandleFunc("/v1/harvests", h.HarvestsHandler)
	mux.HandleFunc("/v1/harvests/", h.HarvestHandler) // For /v1/harvests/:id
	mux.HandleFunc("/v1/probe", h.ProbeHandler)
	mux.HandleFunc("/v1/discoveries", h.DiscoveriesHandler)
}

// HealthCheck handles basic health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}

	WriteHealthy(w, r, "sitescout", Version)
}

// DatabaseHealthCheck handles database health check requests
func (h *Handler) DatabaseHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}

	// Guard against nil store to prevent panic
	if h.Store == nil {
		WriteUnhealthy(w, r, "postgresql", fmt.Errorf("database connection not configured"))
		return
	}

	if err := h.Store.Health(r.Context()); err != nil {
		WriteUnhealthy(w, r, "postgresql", err)
		return
	}

	WriteHealthy(w, r, "postgresql", "")
}

// HarvestsHandler handles requests to /v1/harvests
func (h *Handler) HarvestsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listHarvests(w, r)
	case http.MethodPost:
		h.createHarvest(w, r)
	default:
		MethodNotAllowed(w, r)
	}
}

// HarvestHandler handles requests to /v1/harvests/:id
func (h *Handler) HarvestHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/harvests/")
	if id == "" {
		BadRequest(w, r, "Harvest ID is required")
		return
	}

	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}

	if h.Store == nil {
		NotFound(w, r, "Harvest history requires a configured database")
		return
	}

	harvest, err := h.Store.GetHarvest(r.Context(), id)
	if err != nil {
		NotFound(w, r, "Harvest not found")
		return
	}

	WriteSuccess(w, r, harvest, "Harvest retrieved successfully")
}

// CreateHarvestRequest represents the request body for starting a harvest
type CreateHarvestRequest struct {
	URLs         []string `json:"urls"`
	FollowRobots *bool    `json:"follow_robots,omitempty"`
	MaxDepth     *int     `json:"max_depth,omitempty"`
	MaxRetries   *int     `json:"max_retries,omitempty"`
	BackoffMs    *int     `json:"backoff_ms,omitempty"`
	MaxBackoffMs *int     `json:"max_backoff_ms,omitempty"`
	IgnoreErrors *bool    `json:"ignore_errors,omitempty"`
}

// options converts the request body into collection options, falling back to
// the defaults for any field the caller left out.
func (req *CreateHarvestRequest) options() *sitemap.Options {
	opts := sitemap.DefaultOptions()

	if req.FollowRobots != nil {
		opts.FollowRobots = *req.FollowRobots
	}
	if req.MaxDepth != nil {
		opts.MaxDepth = *req.MaxDepth
	}
	if req.MaxRetries != nil {
		opts.MaxRetries = *req.MaxRetries
	}
	if req.BackoffMs != nil {
		opts.InitialBackoff = time.Duration(*req.BackoffMs) * time.Millisecond
	}
	if req.MaxBackoffMs != nil {
		opts.MaxBackoff = time.Duration(*req.MaxBackoffMs) * time.Millisecond
	}
	if req.IgnoreErrors != nil {
		opts.IgnoreErrors = *req.IgnoreErrors
	}

	return opts
}

// HarvestStats summarises a collection run
type HarvestStats struct {
	URLCount   int   `json:"url_count"`
	ErrorCount int   `json:"error_count"`
	DurationMs int64 `json:"duration_ms"`
}

// HarvestResponse is the payload returned by a completed harvest
type HarvestResponse struct {
	ID      string             `json:"id,omitempty"`
	Entries []sitemap.URLEntry `json:"entries"`
	Errors  []string           `json:"errors,omitempty"`
	Stats   HarvestStats       `json:"stats"`
}

// createHarvest handles POST /v1/harvests
func (h *Handler) createHarvest(w http.ResponseWriter, r *http.Request) {
	var req CreateHarvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, r, "Invalid JSON request body")
		return
	}

	if len(req.URLs) == 0 {
		BadRequest(w, r, "At least one URL is required")
		return
	}
	for _, raw := range req.URLs {
		if err := util.ValidateBaseURL(raw); err != nil {
			BadRequest(w, r, fmt.Sprintf("Invalid URL %q", raw))
			return
		}
	}

	opts := req.options()
	logger := loggerWithRequest(r)

	ctx, span := observability.StartHarvestSpan(r.Context(), observability.HarvestSpanInfo{
		BaseURLs:     req.URLs,
		MaxDepth:     opts.MaxDepth,
		IgnoreErrors: opts.IgnoreErrors,
	})
	defer span.End()

	logger.Info().
		Strs("urls", req.URLs).
		Int("max_depth", opts.MaxDepth).
		Bool("ignore_errors", opts.IgnoreErrors).
		Msg("Harvest started")

	start := time.Now()
	result, err := h.Sitemaps.Collect(ctx, req.URLs, opts)
	duration := time.Since(start)

	status := "completed"
	if err != nil {
		status = "failed"
	}
	observability.RecordHarvest(ctx, observability.HarvestMetrics{
		Status:   status,
		Entries:  len(result.Entries),
		Errors:   len(result.Errors),
		Duration: duration,
	})

	recordID := h.persistHarvest(ctx, req.URLs, result, duration, logger)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("Harvest failed")
		HarvestFailed(w, r, err)
		return
	}

	logger.Info().
		Int("url_count", len(result.Entries)).
		Int("error_count", len(result.Errors)).
		Dur("duration", duration).
		Msg("Harvest completed")

	WriteSuccess(w, r, HarvestResponse{
		ID:      recordID,
		Entries: result.Entries,
		Errors:  result.Errors,
		Stats: HarvestStats{
			URLCount:   len(result.Entries),
			ErrorCount: len(result.Errors),
			DurationMs: duration.Milliseconds(),
		},
	}, "Harvest completed")
}

// persistHarvest stores the run outcome when a database is configured. A
// storage failure is logged rather than surfaced, the harvest itself already
// succeeded or failed on its own terms.
func (h *Handler) persistHarvest(ctx context.Context, baseURLs []string, result *sitemap.Result, duration time.Duration, logger zerolog.Logger) string {
	if h.Store == nil {
		return ""
	}

	id, err := h.Store.RecordHarvest(ctx, baseURLs, len(result.Entries), result.Errors, duration)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to record harvest")
		return ""
	}

	return id
}

// listHarvests handles GET /v1/harvests
func (h *Handler) listHarvests(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		NotFound(w, r, "Harvest history requires a configured database")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	harvests, err := h.Store.RecentHarvests(r.Context(), limit)
	if err != nil {
		DatabaseError(w, r, err)
		return
	}

	WriteSuccess(w, r, map[string]interface{}{
		"harvests": harvests,
		"count":    len(harvests),
	}, "Harvests retrieved successfully")
}

// ProbeHandler handles GET /v1/probe?url=
func (h *Handler) ProbeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}

	target := r.URL.Query().Get("url")
	if target == "" {
		BadRequest(w, r, "url query parameter is required")
		return
	}

	sitemapURL, found := h.Sitemaps.FindSitemapByProbing(r.Context(), target)

	data := map[string]interface{}{
		"found":       found,
		"sitemap_url": nil,
	}
	if found {
		data["sitemap_url"] = sitemapURL
	}

	WriteSuccess(w, r, data, "Probe completed")
}

// DiscoveriesHandler handles GET /v1/discoveries?url=
func (h *Handler) DiscoveriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}

	target := r.URL.Query().Get("url")
	if target == "" {
		BadRequest(w, r, "url query parameter is required")
		return
	}

	opts := sitemap.DefaultOptions()
	if flag := r.URL.Query().Get("follow_robots"); flag != "" {
		followRobots, err := strconv.ParseBool(flag)
		if err != nil {
			BadRequest(w, r, "follow_robots must be a boolean")
			return
		}
		opts.FollowRobots = followRobots
	}

	baseURL := util.NormaliseBaseURL(target)
	sitemaps, fromCache := h.Sitemaps.DiscoverSitemaps(r.Context(), baseURL, opts)

	WriteSuccess(w, r, map[string]interface{}{
		"base_url":   baseURL,
		"sitemaps":   sitemaps,
		"count":      len(sitemaps),
		"from_cache": fromCache,
	}, "Discovery completed")
}
