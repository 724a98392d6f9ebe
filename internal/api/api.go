//nolint:tagliatelle // superior snake-case yo.
package api

//go:generate mockgen -package mocks -destination mocks/mock_api.go github.com/ethpandaops/raid-crawler/internal/api Crawler,History

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/crawler"
	"github.com/ethpandaops/raid-crawler/internal/delivery"
	"github.com/ethpandaops/raid-crawler/internal/filter"
	"github.com/ethpandaops/raid-crawler/internal/history"
	"github.com/ethpandaops/raid-crawler/internal/lease"
	"github.com/ethpandaops/raid-crawler/internal/notify"
	"github.com/ethpandaops/raid-crawler/internal/operator"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/scan"
	"github.com/ethpandaops/raid-crawler/internal/session"
)

// Crawler is the console controller driven by the API.
type Crawler interface {
	Status() crawler.Status
	View() scan.View
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	ReadRaids(ctx context.Context) (scan.View, error)
	RefreshEvents(ctx context.Context) (delivery.Summary, error)
	Screenshot(ctx context.Context) ([]byte, error)
	CurrentTime(ctx context.Context) (time.Time, error)
	StartSearch(ctx context.Context) error
	StopSearch(ctx context.Context) error
	Next(toMatch bool) scan.View
	Previous(toMatch bool) scan.View
	Select(i int) scan.View
	SetBoost(boost int) error
	SetRegions(regions []raid.Region) error
	SetSearchConfig(settings crawler.SearchSettings) error
	TestNotification(ctx context.Context) (notify.Notification, error)
}

// History is the search run log.
type History interface {
	Runs(ctx context.Context, limit int) ([]history.Run, error)
	Matches(ctx context.Context, runID string) ([]history.Match, error)
}

// Messages is the recent operator message buffer.
type Messages interface {
	Messages() []operator.Message
}

// Filters is the filter rule source.
type Filters interface {
	Set() *filter.Set
	Load() error
}

// Verify interface compliance at compile time.
var (
	_ Crawler  = (*crawler.Controller)(nil)
	_ History  = (*history.Store)(nil)
	_ Messages = (*operator.History)(nil)
	_ Filters  = (*filter.Store)(nil)
)

// Handler serves the operator API.
type Handler struct {
	logger   logrus.FieldLogger
	crawler  Crawler
	history  History
	messages Messages
	filters  Filters
}

// NewHandler creates the API handler. history may be nil when run history
// is disabled.
func NewHandler(
	logger logrus.FieldLogger,
	c Crawler,
	hist History,
	messages Messages,
	filters Filters,
) *Handler {
	return &Handler{
		logger:   logger.WithField("handler", "api"),
		crawler:  c,
		history:  hist,
		messages: messages,
		filters:  filters,
	}
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"GET /api/v1/status":                    h.status,
		"GET /api/v1/raids":                     h.raids,
		"GET /api/v1/raids/active":              h.activeRaid,
		"POST /api/v1/raids/next":               h.next,
		"POST /api/v1/raids/previous":           h.previous,
		"POST /api/v1/raids/select":             h.selectRaid,
		"PUT /api/v1/raids/boost":               h.setBoost,
		"PUT /api/v1/regions":                   h.setRegions,
		"POST /api/v1/connect":                  h.connect,
		"POST /api/v1/disconnect":               h.disconnect,
		"POST /api/v1/read":                     h.read,
		"POST /api/v1/events/refresh":           h.refreshEvents,
		"GET /api/v1/screenshot":                h.screenshot,
		"GET /api/v1/time":                      h.consoleTime,
		"POST /api/v1/search/start":             h.startSearch,
		"POST /api/v1/search/stop":              h.stopSearch,
		"GET /api/v1/search/config":             h.searchConfig,
		"PUT /api/v1/search/config":             h.setSearchConfig,
		"POST /api/v1/notify/test":              h.testNotification,
		"GET /api/v1/filters":                   h.listFilters,
		"POST /api/v1/filters/reload":           h.reloadFilters,
		"GET /api/v1/messages":                  h.listMessages,
		"GET /api/v1/history/runs":              h.listRuns,
		"GET /api/v1/history/runs/{id}/matches": h.listMatches,
	}

	for pattern, fn := range routes {
		mux.Handle(pattern, fn)
		h.logger.WithField("route", pattern).Debug("Registered route")
	}

	h.logger.WithField("routes", len(routes)).Info("Registered API routes")
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// errBadRequest marks client input errors.
var errBadRequest = errors.New("bad request")

type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() []error {
	return []error{errBadRequest, e.err}
}

func badRequest(err error) error {
	if err == nil {
		return nil
	}

	return badRequestError{err: err}
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, crawler.ErrBusy), errors.Is(err, lease.ErrHeld):
		return http.StatusConflict
	case errors.Is(err, crawler.ErrNotConnected), errors.Is(err, session.ErrNotConnected):
		return http.StatusPreconditionFailed
	case errors.Is(err, errBadRequest),
		errors.Is(err, scan.ErrNoRegionsSelected),
		errors.Is(err, crawler.ErrUnsupportedGame):
		return http.StatusBadRequest
	case errors.Is(err, crawler.ErrNoRaids):
		return http.StatusNotFound
	case session.IsTransport(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	entry := h.logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})

	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	writeJSON(w, status, ErrorResponse{Error: err.Error(), Status: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return badRequest(err)
	}

	return nil
}
