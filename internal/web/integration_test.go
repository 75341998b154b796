package web_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/nutribot/internal/catalog"
	"github.com/vbonduro/nutribot/internal/db"
	"github.com/vbonduro/nutribot/internal/domain"
	"github.com/vbonduro/nutribot/internal/export"
	"github.com/vbonduro/nutribot/internal/feedback"
	"github.com/vbonduro/nutribot/internal/recommend"
	"github.com/vbonduro/nutribot/internal/service"
	"github.com/vbonduro/nutribot/internal/store"
	"github.com/vbonduro/nutribot/internal/web"
	"github.com/vbonduro/nutribot/internal/web/templates"
)

type sseEvent struct {
	Name string
	Data string
}

type turn struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Kind string `json:"kind"`
	HTML string `json:"html"`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer wires a real server whose feedback client posts back to its
// own built-in sink, backed by in-memory SQLite.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database, err := db.OpenForTesting()
	require.NoError(t, err)

	var handler http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))

	sink := service.NewFeedbackService(store.NewFeedbackStore(database), quietLogger())
	handler = web.NewServer(web.Deps{
		Engine:     recommend.New(catalog.Default()),
		Feedback:   feedback.NewClient(srv.URL+"/api/feedback", 2*time.Second, quietLogger()),
		Sink:       sink,
		Templates:  templates.FS,
		ThinkDelay: 10 * time.Millisecond,
	}, quietLogger())

	t.Cleanup(func() {
		srv.Close()
		_ = database.Close()
	})
	return srv
}

func readEvents(t *testing.T, body io.Reader) []sseEvent {
	t.Helper()
	var events []sseEvent
	var cur sseEvent
	sc := bufio.NewScanner(body)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if cur.Data != "" || cur.Name != "" {
				events = append(events, cur)
			}
			cur = sseEvent{}
		case strings.HasPrefix(line, "event: "):
			cur.Name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.Data = strings.TrimPrefix(line, "data: ")
		}
	}
	require.NoError(t, sc.Err())
	return events
}

func postChat(t *testing.T, srv *httptest.Server, message string) *http.Response {
	t.Helper()
	resp, err := http.PostForm(srv.URL+"/chat", url.Values{"message": {message}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestIntegration_ChatStreamsTurnsInOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t)

	resp := postChat(t, srv, "70kg craving nachos want to lose weight")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(t, resp.Body)
	require.Len(t, events, 4)
	assert.Equal(t, "done", events[3].Name)

	var turns []turn
	for _, ev := range events[:3] {
		var tr turn
		require.NoError(t, json.Unmarshal([]byte(ev.Data), &tr))
		turns = append(turns, tr)
	}
	assert.Equal(t, "user", turns[0].Kind)
	assert.Equal(t, "placeholder", turns[1].Kind)
	assert.Equal(t, "Analyzing...", turns[1].HTML)
	assert.Equal(t, "result", turns[2].Kind)
	assert.Equal(t, "bot", turns[2].Role)
	assert.Contains(t, turns[2].HTML, "Nachos (portion)")
	assert.Contains(t, turns[2].HTML, "~264 kcal")
	assert.Contains(t, turns[2].HTML, "5.6 g protein")
}

func TestIntegration_ChatHelp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t)

	events := readEvents(t, postChat(t, srv, "help").Body)
	require.Len(t, events, 3)

	var tr turn
	require.NoError(t, json.Unmarshal([]byte(events[1].Data), &tr))
	assert.Equal(t, "help", tr.Kind)
	assert.Contains(t, tr.HTML, "Try:")
	assert.Equal(t, "done", events[2].Name)
}

func TestIntegration_ChatBlankInput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t)

	resp := postChat(t, srv, "   ")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestIntegration_ChatJSONBody(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"message":"craving sweet"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	events := readEvents(t, resp.Body)
	require.Len(t, events, 4)
	assert.Contains(t, events[2].Data, "Oreo Swiss Roll (slice)")
}

func TestIntegration_FeedbackRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/feedback", strings.NewReader(url.Values{
		"rating_nachos":    {"5"},
		"rating_oreo_roll": {"3"},
	}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.True(t, res.OK)
	assert.Equal(t, feedback.MessageSuccess, res.Message)

	sumResp, err := http.Get(srv.URL + "/api/feedback/summary")
	require.NoError(t, err)
	defer func() { _ = sumResp.Body.Close() }()

	var summary []domain.DishSummary
	require.NoError(t, json.NewDecoder(sumResp.Body).Decode(&summary))
	assert.Equal(t, []domain.DishSummary{
		{Dish: "nachos", Count: 1, Average: 5},
		{Dish: "oreo_roll", Count: 1, Average: 3},
	}, summary)

	expResp, err := http.Get(srv.URL + "/api/feedback/export")
	require.NoError(t, err)
	defer func() { _ = expResp.Body.Close() }()
	require.Equal(t, http.StatusOK, expResp.StatusCode)
	assert.Contains(t, expResp.Header.Get("Content-Disposition"), ".xlsx")

	data, err := io.ReadAll(expResp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(export.FeedbackSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1+catalog.Default().Len(), "header plus one row per dish, unrated included")
}

func TestIntegration_FeedbackEndpointDown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	srv := httptest.NewServer(web.NewServer(web.Deps{
		Engine:    recommend.New(catalog.Default()),
		Feedback:  feedback.NewClient(deadURL, time.Second, quietLogger()),
		Templates: templates.FS,
	}, quietLogger()))
	defer srv.Close()

	resp, err := http.PostForm(srv.URL+"/feedback", url.Values{"rating_nachos": {"4"}})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), feedback.MessageFailure)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestIntegration_FeedbackPostsOnceWithUnratedDishes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	var calls atomic.Int32
	var got map[string]string
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer remote.Close()

	srv := httptest.NewServer(web.NewServer(web.Deps{
		Engine:    recommend.New(catalog.Default()),
		Feedback:  feedback.NewClient(remote.URL, time.Second, quietLogger()),
		Templates: templates.FS,
	}, quietLogger()))
	defer srv.Close()

	resp, err := http.PostForm(srv.URL+"/feedback", url.Values{"rating_sev_snack": {"2"}})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), feedback.MessageSuccess, "remote status is not inspected")
	assert.Equal(t, int32(1), calls.Load())
	require.Len(t, got, catalog.Default().Len())
	assert.Equal(t, "2", got["sev_snack"])
	assert.Equal(t, "0", got["nachos"])
}

func TestIntegration_IndexPage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Papdi Chaat (small cup)")
	assert.Contains(t, string(body), `name="rating_nachos"`)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	js, err := http.Get(srv.URL + "/static/chat.js")
	require.NoError(t, err)
	defer func() { _ = js.Body.Close() }()
	assert.Equal(t, http.StatusOK, js.StatusCode)
}
