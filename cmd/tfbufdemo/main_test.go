package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/agbru/tfbuffer/internal/config"
	"github.com/agbru/tfbuffer/internal/testutil"
)

func TestRun_SuccessPath(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()

	exitCode := run(context.Background(), cfg, &buf)

	if exitCode != ExitSuccess {
		t.Fatalf("exit code = %d, want %d. Output:\n%s", exitCode, ExitSuccess, buf.String())
	}
	output := testutil.StripAnsiCodes(buf.String())
	if !strings.Contains(output, "frames known to the buffer") {
		t.Errorf("output missing frame listing:\n%s", output)
	}
	if !strings.Contains(output, "lookup(map <- laser)") {
		t.Errorf("output missing expected lookup line:\n%s", output)
	}
	if !strings.Contains(output, "lookup(map <- nonexistent_frame)") {
		t.Errorf("output missing the expected-failure lookup line:\n%s", output)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exitCode := run(ctx, cfg, &buf)

	if exitCode != ExitErrorCanceled {
		t.Errorf("exit code = %d, want %d (ExitErrorCanceled). Output:\n%s", exitCode, ExitErrorCanceled, buf.String())
	}
	output := testutil.StripAnsiCodes(buf.String())
	if !strings.Contains(output, "interrupted") {
		t.Errorf("output should mention interruption:\n%s", output)
	}
}

func TestRun_TimeoutDuringPublish(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	exitCode := run(ctx, cfg, &buf)

	if exitCode != ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d (ExitErrorTimeout). Output:\n%s", exitCode, ExitErrorTimeout, buf.String())
	}
}

func TestPublisher_PoseAtZeroRadiusIsIdentity(t *testing.T) {
	p := publisher{radiusM: 0}
	translation, rotation := p.poseAt(5)
	if translation.X != 0 || translation.Y != 0 || translation.Z != 0 {
		t.Errorf("translation = %+v, want zero", translation)
	}
	if rotation.W != 1 {
		t.Errorf("rotation = %+v, want identity", rotation)
	}
}

func TestVerifyConcurrentReads_NoErrorOnPopulatedBuffer(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	if exitCode := run(context.Background(), cfg, &buf); exitCode != ExitSuccess {
		t.Fatalf("setup run() failed with exit code %d:\n%s", exitCode, buf.String())
	}
}
