package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dgallion1/doclinks/internal/discovery"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(&out, io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestLocalCommand_JSON(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"README.md":     "# Root\n[Guide](docs/guide.md)\n",
		"docs/guide.md": "## Guide\n[Deep](deep.md)\n",
		"docs/deep.md":  "# Deep\n",
	})

	out, err := execute(t, "local", filepath.Join(dir, "README.md"), "--json", "--depth", "1")
	require.NoError(t, err)

	var docs []discovery.LocalDocument
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	require.Equal(t, "Guide", docs[0].Title)
}

func TestLocalCommand_DefaultDepthFollowsTwoHops(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"README.md":     "# Root\n[Guide](docs/guide.md)\n",
		"docs/guide.md": "## Guide\n[Deep](deep.md)\n",
		"docs/deep.md":  "# Deep\n",
	})

	out, err := execute(t, "local", filepath.Join(dir, "README.md"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "Guide")
	require.Contains(t, lines[0], "\t")
	require.Contains(t, lines[1], "Deep")
}

func TestLocalCommand_EmptyJSONIsArray(t *testing.T) {
	dir := writeTree(t, map[string]string{"README.md": "# Alone\n"})

	out, err := execute(t, "local", filepath.Join(dir, "README.md"), "--json")
	require.NoError(t, err)
	require.Equal(t, "[]", strings.TrimSpace(out))
}

func TestLocalCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "local", filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
	require.True(t, discovery.IsCode(err, discovery.CodeNotFound), "got %v", err)
}

func TestLocalCommand_RequiresPath(t *testing.T) {
	_, err := execute(t, "local")
	require.Error(t, err)
}

func TestRemoteCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		switch r.URL.Path {
		case "/index.md":
			io.WriteString(w, "# Index\n[Setup](setup)\n")
		case "/setup":
			io.WriteString(w, "# Setup\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := execute(t, "remote", srv.URL+"/index.md", "--json", "--timeout", "2s")
	require.NoError(t, err)

	var docs []discovery.RemoteDocument
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Equal(t, []discovery.RemoteDocument{{URL: srv.URL + "/setup", Title: "Setup"}}, docs)
}

func TestRemoteCommand_InvalidURL(t *testing.T) {
	_, err := execute(t, "remote", "not-a-url")
	require.True(t, discovery.IsCode(err, discovery.CodeInvalidInput), "got %v", err)
}

func TestResolveCommand(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"docs/index.md": "# Index\n",
		"other.md":      "# Other\n",
	})

	out, err := execute(t, "resolve", filepath.Join(dir, "docs", "index.md"), "../other.md")
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(dir, "other.md"))
	require.NoError(t, err)
	require.Equal(t, want, strings.TrimSpace(out))

	_, err = execute(t, "resolve", filepath.Join(dir, "docs", "index.md"), "missing.md")
	require.Error(t, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, []row{{title: "A", location: "/a.md"}, {title: "B", location: "/b.md"}}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "/b.md")
}
