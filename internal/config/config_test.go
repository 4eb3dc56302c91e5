package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
schema:
  auto_camel_case: false
  disable_field_suggestions: true
  batching:
    enabled: true
    max_operations: 3
server:
  addr: 127.0.0.1:9000
  timeout: 2s
  cors_origins: ["*"]
  forward_headers: [Authorization]
runtime:
  concurrency: 4
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	want := Default()
	want.Schema.AutoCamelCase = false
	want.Schema.DisableFieldSuggestions = true
	want.Schema.Batching = Batching{Enabled: true, MaxOperations: 3}
	want.Server.Addr = "127.0.0.1:9000"
	want.Server.Timeout = 2 * time.Second
	want.Server.CORSOrigins = []string{"*"}
	want.Server.ForwardHeaders = []string{"Authorization"}
	want.Runtime.Concurrency = 4
	want.Log = Log{Level: "debug", Format: "json"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyIsDefault(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("schema:\n  camel: true\n"))
	require.ErrorContains(t, err, "field camel not found")
}

func TestValidate(t *testing.T) {
	_, err := Parse(strings.NewReader(`
schema:
  relay_max_results: 0
  batching: {enabled: true, max_operations: 0}
server: {path: graphql}
log: {level: loud, format: xml}
`))
	require.Error(t, err)
	for _, msg := range []string{
		"relay_max_results must be positive",
		"max_operations must be positive",
		`server.path "graphql" must start with /`,
		"log.level",
		`log.format "xml"`,
	} {
		require.ErrorContains(t, err, msg)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "fieldgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  path: /api\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "/api", cfg.Server.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Log{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)
	require.Contains(t, buf.String(), `"k":1`)
}
