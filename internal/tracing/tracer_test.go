package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing is off by default")
	require.Equal(t, ExporterFile, cfg.Exporter)
	require.Equal(t, "traces.jsonl", cfg.FilePath)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown exporter", func(c *Config) { c.Exporter = "jaeger" }, "unsupported exporter"},
		{"negative rate", func(c *Config) { c.SampleRate = -0.5 }, "sample_rate"},
		{"rate above one", func(c *Config) { c.SampleRate = 2 }, "sample_rate"},
		{"enabled file without path", func(c *Config) { c.Enabled = true; c.FilePath = "" }, "file_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	require.False(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "noop")
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no context")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_RejectsUnknownExporter(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "carrier-pigeon"})
	require.ErrorContains(t, err, "unsupported exporter")
}

func TestNewProvider_NoneRecordsWithoutExport(t *testing.T) {
	p, err := NewProvider(Config{Enabled: true, Exporter: ExporterNone})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "kept")
	require.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_FileExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "out.jsonl")
	p, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    ExporterFile,
		FilePath:    path,
		SampleRate:  1.0,
		ServiceName: "perch-test",
	})
	require.NoError(t, err)

	ctx, parent := p.Tracer().Start(context.Background(), SpanScenarioRun)
	_, child := p.Tracer().Start(ctx, SpanScenarioStep)
	child.SetAttributes(attribute.String(AttrStepOp, "move"), attribute.Int(AttrRecords, 2))
	child.AddEvent("flushed")
	child.SetStatus(codes.Error, "cannot move")
	child.End()
	parent.End()

	// Shutdown drains the batcher into the file.
	require.NoError(t, p.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	byName := make(map[string]SpanRecord)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		byName[rec.Name] = rec
	}
	require.NoError(t, scanner.Err())
	require.Len(t, byName, 2)

	step := byName[SpanScenarioStep]
	run := byName[SpanScenarioRun]
	require.Equal(t, run.SpanID, step.ParentSpanID)
	require.Equal(t, run.TraceID, step.TraceID)
	require.Equal(t, "ERROR", step.Status)
	require.Equal(t, "cannot move", step.StatusMsg)
	require.Equal(t, "move", step.Attributes[AttrStepOp])
	require.EqualValues(t, 2, step.Attributes[AttrRecords])
	require.Len(t, step.Events, 1)
	require.Equal(t, "flushed", step.Events[0].Name)
	require.Empty(t, run.ParentSpanID)
}
