package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchkit/internal/skill"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	APIKey string
	Body   map[string]any
}

// fakeService answers like the search service and hosts the skill route.
type fakeService struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := recordedRequest{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Query:  r.URL.RawQuery,
		APIKey: r.Header.Get("api-key"),
	}
	_ = json.Unmarshal(body, &rec.Body)

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	switch {
	case r.URL.Path == "/api/topwords":
		batch, _, err := skill.DefaultProcessor().Compose(body)
		if err != nil {
			http.Error(w, "Invalid body", http.StatusBadRequest)
			return
		}
		payload, _ := batch.Encode()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case strings.HasSuffix(r.URL.Path, "/docs/search"):
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"@odata.count":3,"value":[]}`)
	case strings.Contains(r.URL.Path, "missing"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"message":"not found"}}`)
	case r.Method == http.MethodPost:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rec.Body)
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"value":[]}`)
	}
}

func (f *fakeService) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "expected a request to reach the service")
	return f.requests[len(f.requests)-1]
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type testEnv struct {
	svc        *fakeService
	configPath string
	outputDir  string
	schemaDir  string
}

var envVars = []string{
	"AZURE_SEARCH_NAME", "AZURE_SEARCH_URL", "AZURE_SEARCH_ADMIN_KEY", "AZURE_SEARCH_QUERY_KEY",
	"AZURE_SEARCH_COGSVCS_ALLIN1_KEY", "AZURE_STORAGE_CONNECTION_STRING", "AZURE_COSMOSDB_CONNECTION_STRING",
	"SEARCHKIT_SKILL_URL", "SEARCHKIT_OUTPUT_DIR", "SEARCHKIT_LISTEN",
}

// newTestEnv starts a fake service and writes a config file pointing at it.
// extra is appended to the generated TOML.
func newTestEnv(t *testing.T, extra string) *testEnv {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
	}

	svc := &fakeService{}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	env := &testEnv{
		svc:        svc,
		configPath: filepath.Join(dir, "searchkit.toml"),
		outputDir:  filepath.Join(dir, "tmp"),
		schemaDir:  filepath.Join(dir, "schemas"),
	}

	content := fmt.Sprintf(`[search]
name = "unit"
url = %q
admin_key = "adminkey1234"
query_key = "querykey5678"

[paths]
output_dir = %q
schema_dir = %q

[skill]
local_url = %q

[logging]
level = "error"
%s`, srv.URL, env.outputDir, env.schemaDir, srv.URL+"/api/topwords", extra)
	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0o644))
	return env
}

// run executes searchctl with the test config and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func (e *testEnv) readOutput(t *testing.T, stem string) map[string]any {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(e.outputDir, stem+".json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(content, &doc))
	return doc
}

func TestRootCmd_HasEveryCommand(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{
		"display-env", "list", "get",
		"create-index", "update-index", "delete-index",
		"create-indexer", "update-indexer", "delete-indexer", "reset-indexer", "run-indexer",
		"create-blob-datasource", "create-cosmos-datasource", "delete-datasource",
		"create-synmap", "update-synmap", "delete-synmap",
		"create-skillset", "update-skillset", "delete-skillset",
		"search-index", "lookup-doc", "index-schema-diff", "indexer-schema-diff",
		"invoke-skill", "generate-sample-index-schema", "generate-sample-blob-indexer",
		"generate-airport-schema-files", "version",
	} {
		found, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}

func TestRootCmd_OutputDirFlagOverridesConfig(t *testing.T) {
	env := newTestEnv(t, "")
	override := filepath.Join(t.TempDir(), "elsewhere")

	_, err := env.run(t, "--output-dir", override, "list", "indexes")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(override, "list_indexes.json"))
	assert.NoFileExists(t, filepath.Join(env.outputDir, "list_indexes.json"))
}

func TestRootCmd_BadConfigFails(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "display-env"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestServiceCommands_RequireSearchConfig(t *testing.T) {
	for _, name := range envVars {
		t.Setenv(name, "")
	}
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o644))

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "list", "indexes"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_SEARCH_URL")
	assert.Contains(t, err.Error(), "AZURE_SEARCH_ADMIN_KEY")
}

func TestDisplayEnv_MasksSecrets(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "display-env")
	require.NoError(t, err)

	assert.Contains(t, out, "********1234")
	assert.Contains(t, out, "********5678")
	assert.NotContains(t, out, "adminkey1234")
	assert.Contains(t, out, "(not set)")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "***", maskSecret("abc"))
	assert.Equal(t, "****", maskSecret("abcd"))
	assert.Equal(t, "*bcde", maskSecret("abcde"))
}

func TestVersionCmd_JSONOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())

	var info map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")
}

func TestVersionCmd_DefaultOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(buf.String(), "searchctl "))
}
