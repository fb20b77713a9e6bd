package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormat_FieldsAndOrphanKey(t *testing.T) {
	ts := time.Date(2025, 12, 6, 10, 45, 0, 0, time.UTC)

	got := Format(ts, LevelWarn, CatAttach, "lookup failed", "type", "*Scene", "depth")

	require.Equal(t, "2025-12-06T10:45:00 [WARN] [attach] lookup failed type=*Scene depth=<missing>\n", got)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "", want: LevelDebug},
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: " error ", want: LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// The remaining tests share the global logger; they run sequentially.

func TestSetOutput_WritesAndFilters(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })
	SetMinLevel(LevelInfo)
	t.Cleanup(func() { SetMinLevel(LevelDebug) })

	Debug(CatTree, "hidden")
	Info(CatTree, "shown", "n", 3)
	ErrorErr(CatConfig, "bad", errors.New("boom"))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[INFO] [tree] shown n=3")
	require.Contains(t, out, "[ERROR] [config] bad error=boom")
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatUI, "moved slide", "from", 0, "to", 2)

	msg := listener.Listen()()
	event, ok := msg.(LogEvent)
	require.True(t, ok)
	require.Contains(t, event.Payload, "moved slide from=0 to=2")
}

func TestSetEnabled_False_Silences(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	SetEnabled(false)
	Warn(CatWatcher, "quiet")
	SetEnabled(true)

	require.Empty(t, buf.String())
}
