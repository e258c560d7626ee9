package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsCurrentMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Computing layout of builtin:router...")
	s.w = &buf

	s.draw(spinnerFrames[0])
	s.SetMessage("Rendering builtin:router...")
	s.draw(spinnerFrames[1])

	out := buf.String()
	if !strings.Contains(out, "Computing layout of builtin:router...") {
		t.Errorf("first frame missing layout message: %q", out)
	}
	if !strings.Contains(out, "Rendering builtin:router...") {
		t.Errorf("second frame missing render message: %q", out)
	}
}

func TestSpinnerStopClearsLine(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Rendering tree.json...")
	s.w = &buf
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	want := "\r" + strings.Repeat(" ", len("Rendering tree.json...")+4) + "\r"
	if !strings.HasSuffix(out, want) {
		t.Errorf("output should end by blanking the line, got %q", out)
	}
	if s.Cancelled() {
		t.Error("Stop without a cancelled parent reported Cancelled")
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Validating tree.toml...")
	s.w = &buf

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that never started")
	}
	if buf.Len() != 0 {
		t.Errorf("unstarted spinner wrote %q", buf.String())
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"interrupt", func() (context.Context, context.CancelFunc) {
			return context.WithCancel(context.Background())
		}},
		{"deadline", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			s := newSpinnerWithContext(ctx, "Computing layout of builtin:router...")
			s.w = &bytes.Buffer{}
			s.Start()

			if tt.name == "interrupt" {
				cancel()
			} else {
				defer cancel()
				<-ctx.Done()
			}

			select {
			case <-s.stopped:
			case <-time.After(time.Second):
				t.Fatal("spinner kept running after its context ended")
			}
			if !s.Cancelled() {
				t.Error("Cancelled() = false after parent context ended")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopOutcomeTwice(t *testing.T) {
	s := newSpinner("Rendering builtin:router...")
	s.w = &bytes.Buffer{}
	s.Start()

	s.StopWithSuccess("Rendered 12 nodes")
	s.StopWithError("Render failed")
	s.Stop()
}
