package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestLocal_DepthOneScenario(t *testing.T) {
	dir := tempDir(t)
	root := writeDoc(t, dir, "A.md", "# Alpha\n\n[b](B.md) and [notes](notes.txt)\n")
	b := writeDoc(t, dir, "B.md", "# Beta\n\n[c](C.md)\n")
	writeDoc(t, dir, "C.md", "# Gamma\n")
	writeDoc(t, dir, "notes.txt", "plain\n")

	docs, err := NewLocal(nil, quietLogger()).Discover(context.Background(), root, 1)
	require.NoError(t, err)
	require.Equal(t, []LocalDocument{{Path: b, Title: "Beta"}}, docs)
}

func TestLocal_MissingTitleFallsBackToFilename(t *testing.T) {
	dir := tempDir(t)
	root := writeDoc(t, dir, "A.md", "[b](B.md)\n")
	writeDoc(t, dir, "B.md", "no heading here\n")

	docs, err := NewLocal(nil, quietLogger()).Discover(context.Background(), root, 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "B.md", docs[0].Title)
}

func TestLocal_AnyHeadingLevelIsTitle(t *testing.T) {
	dir := tempDir(t)
	root := writeDoc(t, dir, "A.md", "[b](B.md)\n")
	writeDoc(t, dir, "B.md", "### Deep Heading\n\n# Later\n")

	docs, err := NewLocal(nil, quietLogger()).Discover(context.Background(), root, 1)
	require.NoError(t, err)
	require.Equal(t, "Deep Heading", docs[0].Title)
}

func TestLocal_CycleAndRelativeRoot(t *testing.T) {
	dir := tempDir(t)
	writeDoc(t, dir, "A.md", "[b](B.md)\n")
	b := writeDoc(t, dir, "B.md", "# Beta\n[back](A.md) [self](./B.md)\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	docs, err := NewLocal(nil, quietLogger()).Discover(context.Background(), "A.md", 5)
	require.NoError(t, err)
	require.Equal(t, []LocalDocument{{Path: b, Title: "Beta"}}, docs)
}

func TestLocal_DeadLinkDoesNotHideSiblings(t *testing.T) {
	dir := tempDir(t)
	root := writeDoc(t, dir, "A.md", "[gone](gone.md) [b](B.md)\n")
	b := writeDoc(t, dir, "B.md", "# Beta\n")

	docs, err := NewLocal(nil, quietLogger()).Discover(context.Background(), root, 2)
	require.NoError(t, err)
	require.Equal(t, []LocalDocument{{Path: b, Title: "Beta"}}, docs)
}

func TestLocal_DepthTwoNested(t *testing.T) {
	dir := tempDir(t)
	root := writeDoc(t, dir, "index.md", "[guide](docs/guide.md)\n")
	guide := writeDoc(t, dir, "docs/guide.md", "# Guide\n[api](../api/ref.markdown#types)\n")
	ref := writeDoc(t, dir, "api/ref.markdown", "## Reference\n[deeper](deep.md)\n")
	writeDoc(t, dir, "api/deep.md", "# Deep\n")

	docs, err := NewLocal(nil, quietLogger()).Discover(context.Background(), root, 2)
	require.NoError(t, err)
	require.Equal(t, []LocalDocument{
		{Path: guide, Title: "Guide"},
		{Path: ref, Title: "Reference"},
	}, docs)
}

func TestLocal_MissingRoot(t *testing.T) {
	_, err := NewLocal(nil, quietLogger()).Discover(context.Background(), filepath.Join(t.TempDir(), "nope.md"), 2)
	require.True(t, IsCode(err, CodeNotFound), "got %v", err)
	require.Contains(t, err.Error(), "file does not exist")
}

func TestLocal_InvalidInput(t *testing.T) {
	l := NewLocal(nil, quietLogger())
	_, err := l.Discover(context.Background(), "", 2)
	require.True(t, IsCode(err, CodeInvalidInput))

	_, err = l.Discover(context.Background(), t.TempDir(), -1)
	require.True(t, IsCode(err, CodeInvalidInput))
}

func TestLocal_DirectoryRootIsADeadEnd(t *testing.T) {
	docs, err := NewLocal(nil, quietLogger()).Discover(context.Background(), t.TempDir(), 2)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestLocal_Confine(t *testing.T) {
	dir := tempDir(t)
	outside := writeDoc(t, dir, "outside/secret.md", "# Secret\n")
	inside := writeDoc(t, dir, "site/index.md", "[s](../outside/secret.md) [p](page.md)\n")
	page := writeDoc(t, dir, "site/page.md", "# Page\n")

	l := NewLocal(nil, quietLogger())
	l.Confine = filepath.Join(dir, "site")

	docs, err := l.Discover(context.Background(), inside, 2)
	require.NoError(t, err)
	require.Equal(t, []LocalDocument{{Path: page, Title: "Page"}}, docs)

	_, err = l.Discover(context.Background(), outside, 2)
	require.True(t, IsCode(err, CodeForbidden), "got %v", err)
}

func TestWithin(t *testing.T) {
	sep := string(filepath.Separator)
	require.True(t, within(sep+"a", sep+"a"))
	require.True(t, within(sep+"a", filepath.Join(sep+"a", "b", "c.md")))
	require.False(t, within(sep+"a", sep+"ab"))
	require.False(t, within(filepath.Join(sep+"a", "b"), sep+"a"))
	require.True(t, within(sep+"a", filepath.Join(sep+"a", "..b")))
}
