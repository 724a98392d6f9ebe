//nolint:tagliatelle // superior snake-case yo.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethpandaops/raid-crawler/internal/crawler"
	"github.com/ethpandaops/raid-crawler/internal/delivery"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/scan"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
)

// RaidsResponse is the full current snapshot.
type RaidsResponse struct {
	Version    uint64       `json:"version"`
	TakenAt    time.Time    `json:"taken_at"`
	Params     raid.Params  `json:"params"`
	Active     int          `json:"active"`
	MatchCount int          `json:"match_count"`
	Raids      []raid.Entry `json:"raids"`
}

// SelectionResponse describes the active raid after navigation.
type SelectionResponse struct {
	Active     int         `json:"active"`
	MatchCount int         `json:"match_count"`
	Raid       *raid.Entry `json:"raid,omitempty"`
}

// EventsResponse is the delivery state after a forced refresh.
type EventsResponse struct {
	Delivery delivery.Summary `json:"delivery"`
}

// TimeResponse is the console clock.
type TimeResponse struct {
	Time time.Time `json:"time"`
}

// FilterResponse describes one loaded filter.
type FilterResponse struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// AcceptedResponse acknowledges a command.
type AcceptedResponse struct {
	Status string `json:"status"`
}

type selectRequest struct {
	Index int `json:"index"`
}

type boostRequest struct {
	Boost int `json:"boost"`
}

type regionsRequest struct {
	Regions []raid.Region `json:"regions"`
}

func newRaidsResponse(view scan.View) RaidsResponse {
	resp := RaidsResponse{
		Version:    view.Snapshot.Version(),
		TakenAt:    view.Snapshot.TakenAt(),
		Params:     view.Snapshot.Params(),
		Active:     view.Active,
		MatchCount: view.MatchCount,
		Raids:      []raid.Entry{},
	}

	if view.Snapshot.Len() > 0 {
		resp.Raids = view.Snapshot.Entries()
	}

	return resp
}

func newSelectionResponse(view scan.View) SelectionResponse {
	resp := SelectionResponse{
		Active:     view.Active,
		MatchCount: view.MatchCount,
	}

	if view.Active >= 0 && view.Active < view.Snapshot.Len() {
		entry := view.Snapshot.Entry(view.Active)
		resp.Raid = &entry
	}

	return resp
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.crawler.Status())
}

func (h *Handler) raids(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newRaidsResponse(h.crawler.View()))
}

func (h *Handler) activeRaid(w http.ResponseWriter, r *http.Request) {
	resp := newSelectionResponse(h.crawler.View())
	if resp.Raid == nil {
		h.writeError(w, r, crawler.ErrNoRaids)

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSelectionResponse(h.crawler.Next(toMatch(r))))
}

func (h *Handler) previous(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSelectionResponse(h.crawler.Previous(toMatch(r))))
}

func (h *Handler) selectRaid(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)

		return
	}

	if n := h.crawler.View().Snapshot.Len(); req.Index < 0 || req.Index >= n {
		h.writeError(w, r, badRequest(fmt.Errorf("index %d out of range [0,%d)", req.Index, n)))

		return
	}

	writeJSON(w, http.StatusOK, newSelectionResponse(h.crawler.Select(req.Index)))
}

func (h *Handler) setBoost(w http.ResponseWriter, r *http.Request) {
	var req boostRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)

		return
	}

	if err := h.crawler.SetBoost(req.Boost); err != nil {
		h.writeError(w, r, badRequest(err))

		return
	}

	writeJSON(w, http.StatusOK, newRaidsResponse(h.crawler.View()))
}

func (h *Handler) setRegions(w http.ResponseWriter, r *http.Request) {
	var req regionsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)

		return
	}

	if err := h.crawler.SetRegions(req.Regions); err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, h.crawler.Status())
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	if err := h.crawler.Connect(r.Context()); err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, h.crawler.Status())
}

func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.crawler.Disconnect(r.Context()); err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, h.crawler.Status())
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	view, err := h.crawler.ReadRaids(r.Context())
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, newRaidsResponse(view))
}

func (h *Handler) refreshEvents(w http.ResponseWriter, r *http.Request) {
	summary, err := h.crawler.RefreshEvents(r.Context())
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, EventsResponse{Delivery: summary})
}

func (h *Handler) screenshot(w http.ResponseWriter, r *http.Request) {
	img, err := h.crawler.Screenshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(img)
}

func (h *Handler) consoleTime(w http.ResponseWriter, r *http.Request) {
	now, err := h.crawler.CurrentTime(r.Context())
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, TimeResponse{Time: now})
}

func (h *Handler) startSearch(w http.ResponseWriter, r *http.Request) {
	if err := h.crawler.StartSearch(r.Context()); err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusAccepted, AcceptedResponse{Status: "search started"})
}

func (h *Handler) stopSearch(w http.ResponseWriter, r *http.Request) {
	if err := h.crawler.StopSearch(r.Context()); err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, h.crawler.Status())
}

func (h *Handler) searchConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.crawler.Status().SearchConfig)
}

func (h *Handler) setSearchConfig(w http.ResponseWriter, r *http.Request) {
	var req crawler.SearchSettings
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)

		return
	}

	if err := h.crawler.SetSearchConfig(req); err != nil {
		h.writeError(w, r, badRequest(err))

		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) testNotification(w http.ResponseWriter, r *http.Request) {
	n, err := h.crawler.TestNotification(r.Context())
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) listFilters(w http.ResponseWriter, _ *http.Request) {
	filters := h.filters.Set().Filters()

	resp := make([]FilterResponse, 0, len(filters))
	for _, f := range filters {
		resp = append(resp, FilterResponse{Name: f.Name(), Enabled: f.Enabled()})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) reloadFilters(w http.ResponseWriter, r *http.Request) {
	if err := h.filters.Load(); err != nil {
		h.writeError(w, r, badRequest(err))

		return
	}

	h.listFilters(w, r)
}

func (h *Handler) listMessages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.messages.Messages())
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, r, errHistoryDisabled)

		return
	}

	limit := defaultRunLimit

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeError(w, r, badRequest(fmt.Errorf("invalid limit %q", v)))

			return
		}

		limit = min(n, maxRunLimit)
	}

	runs, err := h.history.Runs(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) listMatches(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, r, errHistoryDisabled)

		return
	}

	matches, err := h.history.Matches(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, matches)
}

var errHistoryDisabled = badRequest(errors.New("search history is disabled"))

func toMatch(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("match"))

	return err == nil && v
}
