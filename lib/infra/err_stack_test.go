package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func caller() Frame {
	var pcs [3]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	frame := caller()
	require.Equal(t, "err_stack_test.go", fmt.Sprintf("%s", frame))
	require.Equal(t, "TestFrameFormat", fmt.Sprintf("%n", frame))
	require.True(t, strings.HasPrefix(fmt.Sprintf("%v", frame), "err_stack_test.go:"))
	require.True(t, strings.HasPrefix(fmt.Sprintf("%+s", frame), "github.com/benz9527/xbst/lib/infra.TestFrameFormat\n\t"))

	text, err := frame.MarshalText()
	require.NoError(t, err)
	require.Contains(t, string(text), "infra.TestFrameFormat")

	text, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))
}

func TestErrorStack(t *testing.T) {
	errBase := errors.New("base")

	testcases := []struct {
		name    string
		err     error
		wantMsg string
		isBase  bool
	}{
		{
			name:    "new",
			err:     NewErrorStack("boom"),
			wantMsg: "boom",
		},
		{
			name:    "wrap",
			err:     WrapErrorStack(errBase),
			wantMsg: "base",
			isBase:  true,
		},
		{
			name:    "wrap with message",
			err:     WrapErrorStackWithMessage(errBase, "ctx"),
			wantMsg: "ctx: base",
			isBase:  true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Error(tt, tc.err)
			require.Equal(tt, tc.wantMsg, tc.err.Error())
			require.Equal(tt, tc.isBase, errors.Is(tc.err, errBase))

			var es ErrorStack
			require.True(tt, errors.As(tc.err, &es))
			require.NotEmpty(tt, es.Frames())
			require.Equal(tt, "TestErrorStack", fmt.Sprintf("%n", es.Frames()[0]))
			require.True(tt, strings.HasPrefix(fmt.Sprintf("%+v", tc.err), tc.wantMsg+"\n"))
			require.Equal(tt, tc.wantMsg, fmt.Sprintf("%s", tc.err))
		})
	}
}

func TestWrapErrorStackNilAndIdempotent(t *testing.T) {
	require.NoError(t, WrapErrorStack(nil))
	require.NoError(t, WrapErrorStackWithMessage(nil, "ignored"))

	err := NewErrorStack("once")
	require.True(t, err == WrapErrorStack(err))
}

func TestErrorStackMarshalLogObject(t *testing.T) {
	err := WrapErrorStackWithMessage(errors.New("inner"), "outer")
	es, ok := err.(ErrorStack)
	require.True(t, ok)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, es.MarshalLogObject(enc))
	require.Equal(t, "outer: inner", enc.Fields["error"])
	frames, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.Equal(t, len(es.Frames()), len(frames))
}
