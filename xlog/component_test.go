package xlog

import (
	"errors"
	"testing"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

func TestFxXLogger_LogEvent(t *testing.T) {
	var nilLogger *FxXLogger
	nilLogger.LogEvent(&fxevent.Started{})

	w := newTestMemOut(t)
	parent := NewXLogger(
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerEncoder(JSON),
		WithXLoggerLevel(LogLevelDebug),
	)
	logger := NewFxXLogger(parent)

	logger.LogEvent(&fxevent.Started{})
	out := w.String()
	require.Contains(t, out, "\"component\":\"Fx\"")
	require.Contains(t, out, "\"msg\":\"RUNNING\"")
	// Component cores drop the caller.
	require.NotContains(t, out, "callAt")

	w.Reset()
	logger.LogEvent(&fxevent.OnStartExecuted{FunctionName: "start", Err: errors.New("boom")})
	out = w.String()
	require.Contains(t, out, "HOOK OnStart failed")
	require.Contains(t, out, "\"error\":\"boom\"")

	// The component follows the parent level.
	w.Reset()
	parent.IncreaseLogLevel(zapcore.InfoLevel)
	logger.LogEvent(&fxevent.Started{})
	require.Empty(t, w.String())
	logger.LogEvent(&fxevent.Stopping{Signal: testSignal("terminated")})
	require.Contains(t, w.String(), "STOPPING")
}

type testSignal string

func (s testSignal) String() string { return string(s) }
func (s testSignal) Signal()        {}

func TestAntsXLogger_ParentLogLevelChanged(t *testing.T) {
	var logger *AntsXLogger
	logger.Printf("test %d", 123)

	w := newTestMemOut(t)
	parent := NewXLogger(
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerEncoder(JSON),
		WithXLoggerLevel(LogLevelDebug),
	)
	logger = NewAntsXLogger(parent)
	logger.Printf("visible %d", 123)
	require.Contains(t, w.String(), "\"component\":\"Ants\"")
	require.Contains(t, w.String(), "visible 123")

	w.Reset()
	parent.IncreaseLogLevel(zapcore.InfoLevel)
	logger.Printf("hidden %d", 456)
	require.Empty(t, w.String())
}

func TestAntsXLogger_AntsPool(t *testing.T) {
	w := newTestMemOut(t)
	parent := NewXLogger(
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerEncoder(JSON),
		WithXLoggerLevel(LogLevelDebug),
	)
	logger := NewAntsXLogger(parent)

	p, err := antsv2.NewPool(2, antsv2.WithLogger(logger))
	require.NoError(t, err)
	defer p.Release()
	require.NoError(t, p.Submit(func() {
		panic("xlogger panic in ants pool")
	}))
	require.Eventually(t, func() bool {
		return w.String() != ""
	}, time.Second, 10*time.Millisecond)
	require.Contains(t, w.String(), "\"component\":\"Ants\"")
}
