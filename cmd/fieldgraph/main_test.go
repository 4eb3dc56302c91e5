package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/fieldgraph/internal/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPrintSchema(t *testing.T) {
	out, _, err := execute(t, "print-schema")
	require.NoError(t, err)
	require.Contains(t, out, "type Book implements Node {")
	require.Contains(t, out, "input BookFilter {")
	require.Contains(t, out, "  titlePrefix: String")
	require.NotContains(t, out, "cost")
}

func TestPrintSchemaWithoutCamelCase(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fieldgraph.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("schema:\n  auto_camel_case: false\n"), 0o600))
	outPath := filepath.Join(dir, "schema.graphql")

	stdout, _, err := execute(t, "print-schema", "--config", cfgPath, "--log-level", "error", "--out", outPath)
	require.NoError(t, err)
	require.Empty(t, stdout)

	sdl, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(sdl), "  TitlePrefix: String")
}

func TestInvalidFlags(t *testing.T) {
	_, _, err := execute(t, "print-schema", "--log-format", "xml")
	require.ErrorContains(t, err, `log.format "xml"`)

	_, _, err = execute(t, "print-schema", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestHandlerFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Schema.Batching.Enabled = true
	cfg.Server.ForwardHeaders = []string{"Authorization"}
	logger, err := cfg.Log.NewLogger(&bytes.Buffer{})
	require.NoError(t, err)

	h, err := newHandler(cfg, logger)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql",
		strings.NewReader(`[{"query":"{ authors { name } }"},{"query":"{ book(id: \"book-1\") { title } }"}]`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[
		{"data":{"authors":[{"name":"Ursula K. Le Guin"},{"name":"Anonymous"}]}},
		{"data":{"book":{"title":"A Wizard of Earthsea"}}}
	]`, w.Body.String())
}
