package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-board/internal/dialog"
	"persona-board/internal/metrics"
	"persona-board/internal/model"
	"persona-board/internal/state"
	"persona-board/internal/view"
	"persona-board/internal/widget"
)

type fixture struct {
	st  *state.State
	srv *Server
	ts  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	st := state.NewMemory(model.LanguageEN)
	w := widget.New(st, dialog.NewHost(nil, nil), widget.Options{Metrics: metrics.MustNew(reg)})
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0"}, w, reg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx)
	}()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return &fixture{st: st, srv: srv, ts: ts}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/dialogs/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	// The first frame is the current board; the client is attached by then.
	require.Equal(t, frameBoard, next(t, conn, "").Type)
	return conn
}

// next reads frames until one of type typ arrives (any type when empty).
func next(t *testing.T, conn *websocket.Conn, typ string) serverFrame {
	t.Helper()
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var f serverFrame
		require.NoError(t, conn.ReadJSON(&f))
		if typ == "" || f.Type == typ {
			return f
		}
	}
}

func post(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getBoard(t *testing.T, f *fixture) view.Board {
	t.Helper()
	resp, err := http.Get(f.ts.URL + "/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Data view.Board `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Data
}

func TestNewServer_Validates(t *testing.T) {
	_, err := NewServer(ServerConfig{}, nil, nil, nil)
	require.Error(t, err)
}

func TestAddCategoryOverWebsocket(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	resp := post(t, f.ts.URL+"/commands/"+string(widget.CommandAddCategory))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	d := next(t, conn, frameDialog)
	require.NotNil(t, d.Request)
	assert.Equal(t, dialog.KindCategoryForm, d.Request.Kind)
	assert.Nil(t, d.Request.Category)

	require.NoError(t, conn.WriteJSON(clientFrame{Session: d.Session, Message: &dialog.Message{
		Type: dialog.TypeAddCategory, Name: "Designers", Icon: "🎨", Color: "teal",
	}}))
	closed := next(t, conn, frameClosed)
	assert.Equal(t, d.Session, closed.Session)

	b := getBoard(t, f)
	assert.Equal(t, 1, b.TotalCategories)
	require.NotEmpty(t, b.Legend)
	assert.Equal(t, "Designers", b.Legend[0].Name)
}

func TestExportHandshakeOverWebsocket(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	post(t, f.ts.URL+"/commands/"+string(widget.CommandAddProfile))
	post(t, f.ts.URL+"/commands/"+string(widget.CommandExport))

	d := next(t, conn, frameDialog)
	require.Equal(t, dialog.KindExport, d.Request.Kind)
	require.NoError(t, conn.WriteJSON(clientFrame{Session: d.Session, Message: &dialog.Message{Type: dialog.TypeUIReady}}))

	o := next(t, conn, frameOutbound)
	require.NotNil(t, o.Outbound)
	assert.Equal(t, dialog.TypeExportPayload, o.Outbound.Type)
	assert.Contains(t, o.Outbound.Data, `"profile-1"`)

	require.NoError(t, conn.WriteJSON(clientFrame{Session: d.Session, Message: &dialog.Message{Type: dialog.TypeExportComplete}}))
	next(t, conn, frameClosed)
}

func TestDisconnectDismissesOpenDialog(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	post(t, f.ts.URL+"/commands/"+string(widget.CommandOpenSettings))
	next(t, conn, frameDialog)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return noDialog(f) }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 0, getBoard(t, f).TotalCategories)
}

func noDialog(f *fixture) bool {
	v, err := f.srv.read(context.Background(), func(ctx context.Context) (any, error) {
		return f.srv.w.Host().Current() == nil, nil
	})
	return err == nil && v.(bool)
}

func TestDialogWithoutClientCloses(t *testing.T) {
	f := newFixture(t)
	resp := post(t, f.ts.URL+"/commands/"+string(widget.CommandImport))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool { return noDialog(f) }, 5*time.Second, 20*time.Millisecond)
}

func TestUnknownCommandAndMissingProfile(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, post(t, f.ts.URL+"/commands/nope").StatusCode)
	assert.Equal(t, http.StatusNotFound, post(t, f.ts.URL+"/profiles/profile-9/delete").StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	post(t, f.ts.URL+"/commands/"+string(widget.CommandAddProfile))

	resp, err := http.Get(f.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `persona_widget_mutations_total{op="addProfile"} 1`)
}

func TestSameOrigin(t *testing.T) {
	cases := []struct {
		host, origin string
		want         bool
	}{
		{"localhost", "", true},
		{"localhost", "http://localhost", true},
		{"localhost:8080", "http://localhost:8080", true},
		{"localhost", "http://localhost.evil.example", false},
		{"localhost:8080", "http://localhost:8080.evil.example", false},
		{"localhost:8080", "http://localhost:9090", false},
		{"localhost", "not a url", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/dialogs/ws", nil)
		r.Host = tc.host
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		assert.Equal(t, tc.want, sameOrigin(r), "host=%s origin=%s", tc.host, tc.origin)
	}
}
