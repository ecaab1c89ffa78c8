package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distress/internal/api"
	"distress/internal/config"
	"distress/internal/controller"
	"distress/internal/devserver"
	"distress/internal/dom"
	"distress/internal/logging"
)

type fakeServer struct {
	mu        sync.Mutex
	sos       []map[string]any
	logouts   int
	rejectSOS bool
}

func (f *fakeServer) start(t *testing.T) string {
	t.Helper()
	reply := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["app_password"] != "secret" {
			reply(w, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		reply(w, map[string]any{"success": true, "user": map[string]any{"id": 1, "email": body["email"]}})
	})
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"success": true})
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logouts++
		f.mu.Unlock()
		reply(w, map[string]any{"success": true})
	})
	mux.HandleFunc("POST /send_sos_email", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.sos = append(f.sos, body)
		f.mu.Unlock()
		if f.rejectSOS {
			reply(w, map[string]any{"success": false, "message": "mail server down"})
			return
		}
		reply(w, map[string]any{"success": true})
	})
	mux.HandleFunc("GET /get_helpers", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"success": true, "helpers": []map[string]any{
			{"id": 7, "name": "Far", "email": "far@example.com", "latitude": 13.5, "longitude": 77.59},
			{"id": 8, "name": "Near", "email": "near@example.com", "latitude": 12.972, "longitude": 77.595},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func (f *fakeServer) snapshot() ([]map[string]any, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.sos...), f.logouts
}

func testClient(t *testing.T, cfg *config.Config) (*client, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c, err := wire(context.Background(), cfg, wireOptions{
		logOut:  io.Discard,
		docOpts: []dom.Option{dom.WithAlertWriter(&out)},
	})
	require.NoError(t, err)
	t.Cleanup(c.close)
	return c, &out
}

func testConfig(serverURL string) *config.Config {
	cfg := config.Default()
	cfg.ServerURL = serverURL
	_ = cfg.SetLocation("12.9716", "77.5946")
	return cfg
}

func TestSendSOS_Success(t *testing.T) {
	srv := &fakeServer{}
	c, out := testClient(t, testConfig(srv.start(t)))

	err := sendSOS(context.Background(), c, "ann@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, controller.MsgSOSSent+"\n", out.String())
	sos, logouts := srv.snapshot()
	require.Len(t, sos, 1)
	assert.Equal(t, "helper@example.com", sos[0]["recipient_email"])
	assert.InDelta(t, 12.9716, sos[0]["latitude"], 1e-9)
	assert.Equal(t, 1, logouts)
	_, signedIn := c.ctrl.CurrentUser()
	assert.False(t, signedIn)
}

func TestSendSOS_BadPassword(t *testing.T) {
	srv := &fakeServer{}
	c, out := testClient(t, testConfig(srv.start(t)))

	err := sendSOS(context.Background(), c, "ann@example.com", "wrong")

	assert.ErrorIs(t, err, errNotSignedIn)
	assert.Equal(t, "Invalid credentials\n", out.String())
	sos, logouts := srv.snapshot()
	assert.Empty(t, sos)
	assert.Zero(t, logouts)
}

func TestSendSOS_Rejected(t *testing.T) {
	srv := &fakeServer{rejectSOS: true}
	c, out := testClient(t, testConfig(srv.start(t)))

	err := sendSOS(context.Background(), c, "ann@example.com", "secret")

	assert.ErrorIs(t, err, errSOSNotSent)
	assert.Equal(t, "Failed to send SOS: mail server down\n", out.String())
	_, logouts := srv.snapshot()
	assert.Equal(t, 1, logouts, "still signs out")
}

func TestSendSOS_NoLocation(t *testing.T) {
	srv := &fakeServer{}
	cfg := config.Default()
	cfg.ServerURL = srv.start(t)
	c, out := testClient(t, cfg)

	err := sendSOS(context.Background(), c, "ann@example.com", "secret")

	assert.ErrorIs(t, err, errSOSNotSent)
	assert.Equal(t, "Error sending SOS: location unavailable\n", out.String())
	sos, _ := srv.snapshot()
	assert.Empty(t, sos)
}

func TestSendSOS_NearestHelper(t *testing.T) {
	srv := &fakeServer{}
	cfg := testConfig(srv.start(t))
	cfg.HelperLookup = true
	c, _ := testClient(t, cfg)

	require.NoError(t, sendSOS(context.Background(), c, "ann@example.com", "secret"))
	sos, _ := srv.snapshot()
	require.Len(t, sos, 1)
	assert.Equal(t, "near@example.com", sos[0]["recipient_email"])
}

func TestWire_RejectsBadServerURL(t *testing.T) {
	cfg := config.Default()
	cfg.ServerURL = "localhost:5000"
	_, err := wire(context.Background(), cfg, wireOptions{logOut: io.Discard})
	assert.Error(t, err)
}

func TestRegisterCommand(t *testing.T) {
	srv := &fakeServer{}
	url := srv.start(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"register", "--env-file", "testdata/none.env", "--server", url,
		"--name", "Ann", "--email", "ann@example.com", "--password", "secret",
		"--latitude", "12.97", "--longitude", "77.59"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil); rootCmd.SetErr(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, controller.MsgRegistered+"\n", out.String())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "distress v"+version)
}

func TestNewDevServer_RandomSecret(t *testing.T) {
	cfg := config.Default()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	srv, err := newDevServer(cfg, logger)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), config.EnvSessionSecret)
	_, ok := srv.Mailer().(*devserver.Outbox)
	assert.True(t, ok)
}

func TestSendSOS_AgainstDevServer(t *testing.T) {
	cfg := config.Default()
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	ds, err := newDevServer(cfg, logging.Discard())
	require.NoError(t, err)
	hs := httptest.NewServer(ds)
	t.Cleanup(hs.Close)

	c, out := testClient(t, testConfig(hs.URL))
	c.ctrl.Register(context.Background(), api.Registration{
		Name: "Ann", Email: "ann@example.com", Password: "secret", Latitude: "12.97", Longitude: "77.59",
	})
	require.NoError(t, sendSOS(context.Background(), c, "ann@example.com", "secret"))

	assert.Equal(t, controller.MsgRegistered+"\n"+controller.MsgSOSSent+"\n", out.String())
	msgs := ds.Mailer().(*devserver.Outbox).Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "helper@example.com", msgs[0].To)
	assert.Equal(t, "ann@example.com", msgs[0].From)
}

func TestListen_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listen(ctx, "127.0.0.1:0", http.NotFoundHandler(), logging.Discard()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listen did not return after cancel")
	}
}
