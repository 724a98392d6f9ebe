package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ethpandaops/raid-crawler/internal/api/mocks"
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

type fakeFilters struct {
	set     *filter.Set
	loadErr error
	loads   int
}

func (f *fakeFilters) Set() *filter.Set { return f.set }

func (f *fakeFilters) Load() error {
	f.loads++

	return f.loadErr
}

type testServer struct {
	crawler  *mocks.MockCrawler
	history  *mocks.MockHistory
	messages *operator.History
	filters  *fakeFilters
	mux      *http.ServeMux
}

func newTestServer(t *testing.T, withHistory bool) *testServer {
	t.Helper()

	ctrl := gomock.NewController(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ts := &testServer{
		crawler:  mocks.NewMockCrawler(ctrl),
		history:  mocks.NewMockHistory(ctrl),
		messages: operator.NewHistory(8),
		filters: &fakeFilters{set: filter.NewSet(
			&filter.Rule{RuleName: "shiny dragons"},
			&filter.Rule{RuleName: "six star", Disabled: true},
		)},
		mux: http.NewServeMux(),
	}

	var hist History
	if withHistory {
		hist = ts.history
	}

	NewHandler(logger, ts.crawler, hist, ts.messages, ts.filters).Register(ts.mux)

	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}

	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, httptest.NewRequest(method, path, reader))

	return rec
}

func testView(t *testing.T, active int) scan.View {
	t.Helper()

	b := raid.Batch{Region: raid.Kitakami}
	for _, seed := range []uint32{0xAAAA, 0xBBBB, 0xCCCC} {
		b.Raids = append(b.Raids, raid.Raid{Seed: seed, Region: raid.Kitakami})
		b.Encounters = append(b.Encounters, raid.Encounter{Species: 1003})
		b.Rewards = append(b.Rewards, []raid.Reward{})
	}

	snap, err := raid.NewSnapshot(7, raid.Params{StoryProgress: 4, EventProgress: 3}, b)
	require.NoError(t, err)

	return scan.View{Snapshot: snap, Active: active, MatchCount: 1}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	return v
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "busy", err: fmt.Errorf("%w: read in progress", crawler.ErrBusy), want: http.StatusConflict},
		{name: "lease held", err: fmt.Errorf("acquire console: %w", lease.ErrHeld), want: http.StatusConflict},
		{name: "not connected", err: crawler.ErrNotConnected, want: http.StatusPreconditionFailed},
		{name: "session not connected", err: session.ErrNotConnected, want: http.StatusPreconditionFailed},
		{name: "no regions", err: fmt.Errorf("read raids: %w", scan.ErrNoRegionsSelected), want: http.StatusBadRequest},
		{name: "unsupported game", err: crawler.ErrUnsupportedGame, want: http.StatusBadRequest},
		{name: "bad input", err: badRequest(errors.New("boost must not be negative")), want: http.StatusBadRequest},
		{name: "no raids", err: crawler.ErrNoRaids, want: http.StatusNotFound},
		{name: "transport", err: session.Wrap("peekAbsolute", io.EOF), want: http.StatusBadGateway},
		{name: "other", err: errors.New("disk full"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestBadRequestKeepsCause(t *testing.T) {
	err := badRequest(scan.ErrNoRegionsSelected)

	require.ErrorIs(t, err, errBadRequest)
	require.ErrorIs(t, err, scan.ErrNoRegionsSelected)
	assert.Equal(t, scan.ErrNoRegionsSelected.Error(), err.Error())
	assert.NoError(t, badRequest(nil))
}

func TestHandler_Commands(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		setup      func(ts *testServer)
		wantStatus int
	}{
		{
			name:   "connect",
			method: http.MethodPost,
			path:   "/api/v1/connect",
			setup: func(ts *testServer) {
				ts.crawler.EXPECT().Connect(gomock.Any()).Return(nil)
				ts.crawler.EXPECT().Status().Return(crawler.Status{Connected: true})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "connect to another game",
			method: http.MethodPost,
			path:   "/api/v1/connect",
			setup: func(ts *testServer) {
				ts.crawler.EXPECT().Connect(gomock.Any()).
					Return(fmt.Errorf("%w: title 0100000000010000", crawler.ErrUnsupportedGame))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "read while busy",
			method: http.MethodPost,
			path:   "/api/v1/read",
			setup: func(ts *testServer) {
				ts.crawler.EXPECT().ReadRaids(gomock.Any()).Return(scan.View{}, crawler.ErrBusy)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "read while disconnected",
			method: http.MethodPost,
			path:   "/api/v1/read",
			setup: func(ts *testServer) {
				ts.crawler.EXPECT().ReadRaids(gomock.Any()).Return(scan.View{}, crawler.ErrNotConnected)
			},
			wantStatus: http.StatusPreconditionFailed,
		},
		{
			name:   "refresh events",
			method: http.MethodPost,
			path:   "/api/v1/events/refresh",
			setup: func(ts *testServer) {
				ts.crawler.EXPECT().RefreshEvents(gomock.Any()).Return(delivery.Summary{Version: 3}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "start search",
			method: http.MethodPost,
			path:   "/api/v1/search/start",
			setup: func(ts *testServer) {
				ts.crawler.EXPECT().StartSearch(gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name:   "stop search",
			method: http.MethodPost,
			path:   "/api/v1/search/stop",
			setup: func(ts *testServer) {
				ts.crawler.EXPECT().StopSearch(gomock.Any()).Return(nil)
				ts.crawler.EXPECT().Status().Return(crawler.Status{})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "disconnect",
			method: http.MethodPost,
			path:   "/api/v1/disconnect",
			setup: func(ts *testServer) {
				ts.crawler.EXPECT().Disconnect(gomock.Any()).Return(nil)
				ts.crawler.EXPECT().Status().Return(crawler.Status{})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "test notification without raids",
			method: http.MethodPost,
			path:   "/api/v1/notify/test",
			setup: func(ts *testServer) {
				ts.crawler.EXPECT().TestNotification(gomock.Any()).Return(notify.Notification{}, crawler.ErrNoRaids)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			path:       "/api/v1/connect",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			if tt.setup != nil {
				tt.setup(ts)
			}

			rec := ts.do(tt.method, tt.path, "")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if rec.Code >= http.StatusBadRequest && rec.Code != http.StatusMethodNotAllowed {
				resp := decode[ErrorResponse](t, rec)
				assert.Equal(t, rec.Code, resp.Status)
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestHandler_Raids(t *testing.T) {
	ts := newTestServer(t, false)
	ts.crawler.EXPECT().View().Return(testView(t, 1))

	rec := ts.do(http.MethodGet, "/api/v1/raids", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[RaidsResponse](t, rec)
	assert.Equal(t, uint64(7), resp.Version)
	assert.Equal(t, 1, resp.Active)
	assert.Equal(t, 3, resp.Params.EventProgress)
	require.Len(t, resp.Raids, 3)
	assert.Equal(t, uint32(0xBBBB), resp.Raids[1].Raid.Seed)
	assert.Equal(t, raid.Kitakami, resp.Raids[1].Raid.Region)
}

func TestHandler_RaidsEmpty(t *testing.T) {
	ts := newTestServer(t, false)
	ts.crawler.EXPECT().View().Return(scan.View{}).Times(2)

	rec := ts.do(http.MethodGet, "/api/v1/raids", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"raids":[]`)

	rec = ts.do(http.MethodGet, "/api/v1/raids/active", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Navigation(t *testing.T) {
	ts := newTestServer(t, false)

	gomock.InOrder(
		ts.crawler.EXPECT().Next(true).Return(testView(t, 2)),
		ts.crawler.EXPECT().Previous(false).Return(testView(t, 1)),
	)

	rec := ts.do(http.MethodPost, "/api/v1/raids/next?match=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[SelectionResponse](t, rec)
	assert.Equal(t, 2, resp.Active)
	require.NotNil(t, resp.Raid)
	assert.Equal(t, uint32(0xCCCC), resp.Raid.Raid.Seed)

	rec = ts.do(http.MethodPost, "/api/v1/raids/previous", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[SelectionResponse](t, rec).Active)
}

func TestHandler_Select(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		selects    bool
		wantStatus int
	}{
		{name: "valid index", body: `{"index":2}`, selects: true, wantStatus: http.StatusOK},
		{name: "out of range", body: `{"index":3}`, wantStatus: http.StatusBadRequest},
		{name: "negative", body: `{"index":-1}`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"idx":1}`, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			ts.crawler.EXPECT().View().Return(testView(t, 0)).AnyTimes()

			if tt.selects {
				ts.crawler.EXPECT().Select(2).Return(testView(t, 2))
			}

			rec := ts.do(http.MethodPost, "/api/v1/raids/select", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Settings(t *testing.T) {
	ts := newTestServer(t, false)

	ts.crawler.EXPECT().SetBoost(-1).Return(errors.New("boost must not be negative, got -1"))
	ts.crawler.EXPECT().SetRegions([]raid.Region{raid.Paldea, raid.Blueberry}).Return(nil)
	ts.crawler.EXPECT().Status().Return(crawler.Status{Regions: []raid.Region{raid.Paldea, raid.Blueberry}})
	ts.crawler.EXPECT().SetSearchConfig(crawler.SearchSettings{ResetThreshold: 30, SaveOnMatch: true}).Return(nil)

	rec := ts.do(http.MethodPut, "/api/v1/raids/boost", `{"boost":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPut, "/api/v1/regions", `{"regions":["paldea","Blueberry"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"regions":["Paldea","Blueberry"]`)

	rec = ts.do(http.MethodPut, "/api/v1/regions", `{"regions":["kanto"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPut, "/api/v1/search/config", `{"reset_threshold":30,"save_on_match":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, decode[crawler.SearchSettings](t, rec).ResetThreshold)
}

func TestHandler_SetRegionsWhileBusy(t *testing.T) {
	ts := newTestServer(t, false)
	ts.crawler.EXPECT().SetRegions(gomock.Any()).Return(fmt.Errorf("%w: search in progress", crawler.ErrBusy))

	rec := ts.do(http.MethodPut, "/api/v1/regions", `{"regions":["paldea"]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_ScreenshotAndTime(t *testing.T) {
	ts := newTestServer(t, false)

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	ts.crawler.EXPECT().Screenshot(gomock.Any()).Return([]byte{0xFF, 0xD8, 0xFF}, nil)
	ts.crawler.EXPECT().CurrentTime(gomock.Any()).Return(now, nil)

	rec := ts.do(http.MethodGet, "/api/v1/screenshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.Equal([]byte{0xFF, 0xD8, 0xFF}, rec.Body.Bytes()))

	rec = ts.do(http.MethodGet, "/api/v1/time", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, now.Equal(decode[TimeResponse](t, rec).Time))
}

func TestHandler_Filters(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(http.MethodGet, "/api/v1/filters", "")
	require.Equal(t, http.StatusOK, rec.Code)

	filters := decode[[]FilterResponse](t, rec)
	require.Len(t, filters, 2)
	assert.Equal(t, FilterResponse{Name: "shiny dragons", Enabled: true}, filters[0])
	assert.False(t, filters[1].Enabled)

	rec = ts.do(http.MethodPost, "/api/v1/filters/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ts.filters.loads)

	ts.filters.loadErr = errors.New("rule 0: name is required")

	rec = ts.do(http.MethodPost, "/api/v1/filters/reload", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Messages(t *testing.T) {
	ts := newTestServer(t, false)
	ts.messages.Report(operator.Info(operator.KindStatus, "Connected to Violet", nil))

	rec := ts.do(http.MethodGet, "/api/v1/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	msgs := decode[[]operator.Message](t, rec)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Connected to Violet", msgs[0].Text)
}

func TestHandler_History(t *testing.T) {
	ts := newTestServer(t, true)

	runs := []history.Run{{ID: "run-1", Console: "switch", Outcome: history.OutcomeMatched, Tries: 40}}

	gomock.InOrder(
		ts.history.EXPECT().Runs(gomock.Any(), defaultRunLimit).Return(runs, nil),
		ts.history.EXPECT().Runs(gomock.Any(), maxRunLimit).Return(runs, nil),
		ts.history.EXPECT().Matches(gomock.Any(), "run-1").Return([]history.Match{{RunID: "run-1"}}, nil),
	)

	rec := ts.do(http.MethodGet, "/api/v1/history/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-1", decode[[]history.Run](t, rec)[0].ID)

	rec = ts.do(http.MethodGet, "/api/v1/history/runs?limit=100000", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/history/runs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/history/runs/run-1/matches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]history.Match](t, rec), 1)
}

func TestHandler_HistoryDisabled(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(http.MethodGet, "/api/v1/history/runs", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "search history is disabled")
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health()(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[HealthResponse](t, rec).Status)
}
