package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/config"
	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/report"
	"github.com/Sumatoshi-tech/locstats/pkg/server"
	"github.com/Sumatoshi-tech/locstats/pkg/timeline"
)

const (
	testCSV = `commit,author,date,time,timezone,file,type,line,depth,length
c1,Ann,2024-01-01,09:00:00,+00:00,a.go,go,1,0,10
c1,Ann,2024-01-01,09:00:00,+00:00,a.go,go,2,1,20
c2,Bob,2024-01-02,15:30:00,+00:00,b.py,py,1,0,5
c3,Ann,2024-01-04,21:00:00,+00:00,a.go,go,3,2,40
`
	testHeaderOnly = "commit,author,date,time,timezone,file,type,line,depth,length\n"
	testCommits    = 3
	testWaitFor    = 5 * time.Second
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLoader(t *testing.T, content string) *dataset.Loader {
	t.Helper()

	path := filepath.Join(t.TempDir(), "loc.csv")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dataset.NewLoader(dataset.Options{SourcePath: path, Logger: quietLogger()})
}

func newTestServer(t *testing.T, loader *dataset.Loader) *httptest.Server {
	t.Helper()

	srv, err := server.New(loader, server.Options{
		Config: config.Default().Server,
		Report: report.DefaultOptions(),
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx // test helper.
	require.NoError(t, err)

	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func TestServer_Summary(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testCSV))

	var body server.SummaryResponse

	status := getJSON(t, ts.URL+"/api/summary", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, testCommits, body.Summary.TotalCommits)
	assert.Equal(t, 4, body.Summary.TotalLines)
	assert.Equal(t, dataset.SourceRaw, body.Source)
	assert.Len(t, body.Languages, 2)
}

func TestServer_Commits(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testCSV))

	var body []commits.CommitSummary

	status := getJSON(t, ts.URL+"/api/commits", &body)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, body, testCommits)
	assert.Equal(t, "c1", body[0].ID)
	assert.Equal(t, 2, body[0].TotalLines)
	assert.Equal(t, "c3", body[2].ID)
}

func TestServer_Files(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testCSV))

	var body []commits.FileSummary

	status := getJSON(t, ts.URL+"/api/files?limit=1", &body)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, body, 1)
	assert.Equal(t, "a.go", body[0].Name)
	assert.Equal(t, 3, body[0].Lines)

	var errBody server.ErrorResponse

	status = getJSON(t, ts.URL+"/api/files?limit=zero", &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errBody.Error, "limit")
}

func TestServer_Window(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testCSV))

	tests := []struct {
		name    string
		query   string
		status  int
		commits int
	}{
		{name: "full progress", query: "progress=100", status: http.StatusOK, commits: 3},
		{name: "start", query: "progress=0", status: http.StatusOK, commits: 1},
		{name: "step", query: "step=1", status: http.StatusOK, commits: 2},
		{name: "cutoff", query: "cutoff=2024-01-02T15:30:00Z", status: http.StatusOK, commits: 2},
		{name: "step out of range", query: "step=9", status: http.StatusBadRequest},
		{name: "no selector", query: "", status: http.StatusBadRequest},
		{name: "two selectors", query: "progress=10&step=0", status: http.StatusBadRequest},
		{name: "bad cutoff", query: "cutoff=yesterday", status: http.StatusBadRequest},
		{name: "bad progress", query: "progress=half", status: http.StatusBadRequest},
		{name: "nan progress", query: "progress=NaN", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var body dataset.WindowView

			status := getJSON(t, ts.URL+"/api/window?"+tt.query, &body)

			require.Equal(t, tt.status, status)

			if tt.status == http.StatusOK {
				assert.Equal(t, tt.commits, body.Commits)
			}
		})
	}
}

func TestServer_Selection(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testCSV))

	var none timeline.Selection

	status := getJSON(t, ts.URL+"/api/selection", &none)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, none.Active)
	assert.Empty(t, none.Commits)
	assert.Len(t, none.Breakdown, 2)

	var all timeline.Selection

	status = getJSON(t, ts.URL+"/api/selection?x0=0&y0=0&x1=1000&y1=600&width=1000&height=600", &all)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, all.Active)
	assert.Len(t, all.Commits, testCommits)

	var empty timeline.Selection

	status = getJSON(t, ts.URL+"/api/selection?x0=0&y0=0&x1=1&y1=1", &empty)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, empty.Active)
	assert.Empty(t, empty.Commits)
	assert.Empty(t, empty.Breakdown)

	status = getJSON(t, ts.URL+"/api/selection?x0=0&y0=0", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_EmptyDataset(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testHeaderOnly))

	var errBody server.ErrorResponse

	status := getJSON(t, ts.URL+"/api/window?progress=50", &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, errBody.Error, "empty dataset")

	status = getJSON(t, ts.URL+"/api/selection", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var view dataset.WindowView

	status = getJSON(t, ts.URL+"/api/window?cutoff=2024-01-01T00:00:00Z", &view)
	assert.Equal(t, http.StatusOK, status)
	assert.Zero(t, view.Commits)
}

func TestServer_SourceUnavailable(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, ""))

	var errBody server.ErrorResponse

	status := getJSON(t, ts.URL+"/api/summary", &errBody)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, errBody.Error, "dataset unavailable")

	status = getJSON(t, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	loader := newLoader(t, testCSV)
	ts := newTestServer(t, loader)

	var before map[string]string

	status := getJSON(t, ts.URL+"/healthz", &before)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "uninitialized", before["status"])

	_, err := loader.Initialize(context.Background())
	require.NoError(t, err)

	var after map[string]string

	status = getJSON(t, ts.URL+"/healthz", &after)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", after["status"])
}

func TestServer_Report(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testCSV))

	resp, err := http.Get(ts.URL + "/?theme=light&progress=50") //nolint:noctx // test.
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), report.DefaultTitle)

	status := getJSON(t, ts.URL+"/?theme=neon", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = getJSON(t, ts.URL+"/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testCSV))

	status := getJSON(t, ts.URL+"/api/summary", nil)
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(ts.URL + "/metrics") //nolint:noctx // test.
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "locstats_requests")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestServer_WindowSocket(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testCSV))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/window"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"progress": 100}`)))

	var view dataset.WindowView
	require.NoError(t, conn.ReadJSON(&view))
	assert.Equal(t, testCommits, view.Commits)
	assert.InDelta(t, 100, view.Progress, 0.001)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"cutoff": "2024-01-01T09:00:00Z", "limit": 1}`)))

	view = dataset.WindowView{}
	require.NoError(t, conn.ReadJSON(&view))
	assert.Equal(t, 1, view.Commits)
	assert.Len(t, view.Files, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"step": 9}`)))

	var errBody server.ErrorResponse
	require.NoError(t, conn.ReadJSON(&errBody))
	assert.Contains(t, errBody.Error, "out of range")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))

	errBody = server.ErrorResponse{}
	require.NoError(t, conn.ReadJSON(&errBody))
	assert.Contains(t, errBody.Error, "invalid message")
}

func TestServer_WindowSocketRejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, newLoader(t, testCSV))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/window"
	header := http.Header{"Origin": []string{"http://evil.example"}}

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	srv, err := server.New(newLoader(t, testCSV), server.Options{
		Config: config.Default().Server,
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- srv.Serve(ctx, ln)
	}()

	require.Eventually(t, func() bool {
		resp, getErr := http.Get("http://" + ln.Addr().String() + "/healthz") //nolint:noctx // test.
		if getErr != nil {
			return false
		}

		resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, testWaitFor, 10*time.Millisecond)

	cancel()

	select {
	case serveErr := <-done:
		assert.NoError(t, serveErr)
	case <-time.After(testWaitFor):
		t.Fatal("server did not stop")
	}
}
