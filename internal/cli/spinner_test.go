package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// captureUI redirects status output to a buffer for the rest of the test.
func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := uiOut
	uiOut = &buf
	t.Cleanup(func() { uiOut = prev })
	return &buf
}

func TestSpinnerText(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		advance int
		want    string
	}{
		{"no total", 0, 2, "Building views"},
		{"none done", 3, 0, "Building views 0/3"},
		{"some done", 3, 2, "Building views 2/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSpinner(context.Background(), "Building views", tt.total)
			for range tt.advance {
				s.Advance()
			}
			if got := s.text(); got != tt.want {
				t.Errorf("text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpinnerAdvanceConcurrent(t *testing.T) {
	s := newSpinner(context.Background(), "Building views", 50)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Advance()
		}()
	}
	wg.Wait()
	if got := s.text(); got != "Building views 50/50" {
		t.Errorf("text() = %q, want %q", got, "Building views 50/50")
	}
}

func TestSpinnerRendersProgress(t *testing.T) {
	out := captureUI(t)
	s := newSpinner(context.Background(), "Building views", 2)
	s.Advance()
	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Building views 1/2") {
		t.Errorf("spinner output %q does not show progress", out.String())
	}
	if !strings.HasSuffix(out.String(), "\r") {
		t.Errorf("spinner output %q does not end with a cleared line", out.String())
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	captureUI(t)
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "Building views", 0)
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	captureUI(t)
	s := newSpinner(context.Background(), "Building views", 0)
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	out := captureUI(t)
	s := newSpinner(context.Background(), "Building views", 0)
	s.Stop()
	if out.Len() != 0 {
		t.Errorf("Stop() before Start() wrote %q", out.String())
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	out := captureUI(t)
	s := newSpinner(context.Background(), "Building views", 1)
	s.Start()
	s.StopWithError("Build failed")
	if !strings.Contains(out.String(), "Build failed") {
		t.Errorf("StopWithError() output %q does not contain the message", out.String())
	}
}
