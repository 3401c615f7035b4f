package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownOnDone_Clean(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	shutdownOnDone(ctx, ts.Config, log, time.Second)
	assert.Contains(t, buf.String(), "shutting down")
	assert.NotContains(t, buf.String(), "level=WARN")
}

func TestShutdownOnDone_LogsTimeout(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer ts.Close()
	defer close(release)

	go func() {
		resp, err := http.Get(ts.URL)
		if err == nil {
			resp.Body.Close()
		}
	}()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the handler")
	}

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	shutdownOnDone(ctx, ts.Config, log, 10*time.Millisecond)
	out := buf.String()
	require.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "did not shut down cleanly")
	assert.Contains(t, out, context.DeadlineExceeded.Error())
}
