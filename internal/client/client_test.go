package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/clock"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/server"
	"github.com/jmylchreest/toastui/internal/surface"
	"github.com/jmylchreest/toastui/internal/theme"
)

func startDaemon(t *testing.T) (*Client, *center.Center, *clock.Manual) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultDaemonConfig()
	clk := clock.NewManual(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	c := center.New(surface.NewDocument(), clk, cfg, logger)
	srv := server.New(c, theme.NewLoader("default", t.TempDir(), logger), cfg, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cl, err := New(ts.URL, 5*time.Second)
	require.NoError(t, err)
	return cl, c, clk
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		want    string
		wantErr bool
	}{
		{name: "host port", addr: "127.0.0.1:7777", want: "http://127.0.0.1:7777/api/toasts"},
		{name: "url with path", addr: "https://example.com/toasts/", want: "https://example.com/toasts/api/toasts"},
		{name: "empty", addr: "", wantErr: true},
		{name: "bad scheme", addr: "ftp://x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.addr, time.Second)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.endpoint(server.PathToasts))
		})
	}
}

func TestClient_Roundtrip(t *testing.T) {
	cl, c, _ := startDaemon(t)
	ctx := context.Background()

	created, err := cl.Create(ctx, model.Request{Message: "Disk low", Severity: "warning", DurationMS: 2000})
	require.NoError(t, err)
	assert.Equal(t, "Disk low", created.Message)
	assert.Equal(t, model.SeverityWarning, created.Severity)
	assert.Equal(t, int64(2000), created.DurationMS)

	got, err := cl.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	list, err := cl.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, cl.Dismiss(ctx, created.ID))
	assert.Equal(t, 0, c.Len())

	err = cl.Dismiss(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Message, created.ID)

	_, err = cl.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Clear(t *testing.T) {
	cl, c, _ := startDaemon(t)
	c.Info("a", 0)
	c.Error("b", 0)

	n, err := cl.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, c.Len())
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	cl, err := New(addr, time.Second)
	require.NoError(t, err)
	_, err = cl.List(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_Watch(t *testing.T) {
	cl, c, clk := startDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs := make(chan server.StreamMessage, 16)
	errCh := make(chan error, 1)
	go func() { errCh <- cl.Watch(ctx, func(m server.StreamMessage) { msgs <- m }) }()

	// The stream subscribes during the handshake; retry until a frame arrives.
	var first server.StreamMessage
	require.Eventually(t, func() bool {
		c.Info("ping", 0)
		select {
		case first = <-msgs:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, center.EventAdded, first.Type)
	assert.Equal(t, "ping", first.Toast.Message)

	clk.Advance(100 * time.Millisecond)
	var sawShown bool
	require.Eventually(t, func() bool {
		select {
		case m := <-msgs:
			if m.Type == center.EventShown {
				sawShown = true
			}
		default:
		}
		return sawShown
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
