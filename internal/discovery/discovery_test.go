package discovery

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dgallion1/doclinks/internal/fetch"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource serves documents from memory. Each document's content is a
// title line followed by one linked location per line.
type fakeSource struct {
	docs    map[string]string
	fetches map[string]int
	fail    map[string]error
}

func newFakeSource(docs map[string]string) *fakeSource {
	return &fakeSource{docs: docs, fetches: map[string]int{}, fail: map[string]error{}}
}

func (s *fakeSource) Fetch(_ context.Context, location string) (string, error) {
	s.fetches[location]++
	if err, ok := s.fail[location]; ok {
		return "", err
	}
	content, ok := s.docs[location]
	if !ok {
		return "", &fetch.Error{Kind: fetch.KindNotFound, Location: location}
	}
	return content, nil
}

func (s *fakeSource) Links(content, _ string) []string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	return lines[1:]
}

func (s *fakeSource) Title(content string) string {
	title, _, _ := strings.Cut(content, "\n")
	return title
}

func locations(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Location)
	}
	return out
}

func graph() map[string]string {
	return map[string]string{
		"A": "Alpha\nB\nC",
		"B": "Beta\nD\nA",
		"C": "Gamma\nD\nB",
		"D": "Delta\nE",
		"E": "Epsilon\nA",
	}
}

func TestTraverse_BreadthFirstOrder(t *testing.T) {
	src := newFakeSource(graph())
	docs, err := Traverse(context.Background(), src, "A", Options{MaxDepth: 10, Logger: quietLogger()})
	require.NoError(t, err)
	require.Equal(t, []string{"B", "C", "D", "E"}, locations(docs))
	require.Equal(t, "Beta", docs[0].Title)
	require.Equal(t, "Epsilon", docs[3].Title)
}

func TestTraverse_DepthBound(t *testing.T) {
	tests := []struct {
		depth int
		want  []string
	}{
		{0, []string{}},
		{1, []string{"B", "C"}},
		{2, []string{"B", "C", "D"}},
		{3, []string{"B", "C", "D", "E"}},
	}
	for _, tt := range tests {
		src := newFakeSource(graph())
		docs, err := Traverse(context.Background(), src, "A", Options{MaxDepth: tt.depth, Logger: quietLogger()})
		require.NoError(t, err)
		require.Equal(t, tt.want, locations(docs), "depth %d", tt.depth)
	}
}

func TestTraverse_DepthZeroFetchesNothing(t *testing.T) {
	src := newFakeSource(graph())
	docs, err := Traverse(context.Background(), src, "A", Options{MaxDepth: 0, Logger: quietLogger()})
	require.NoError(t, err)
	require.Empty(t, docs)
	require.Empty(t, src.fetches)
}

func TestTraverse_FrontierLeavesFetchedOnlyForTitle(t *testing.T) {
	src := newFakeSource(graph())
	_, err := Traverse(context.Background(), src, "A", Options{MaxDepth: 1, Logger: quietLogger()})
	require.NoError(t, err)
	// B and C are one hop away: fetched once for their titles, never expanded,
	// so D is never touched.
	require.Equal(t, 1, src.fetches["B"])
	require.Equal(t, 1, src.fetches["C"])
	require.Zero(t, src.fetches["D"])
}

func TestTraverse_FetchesEachDocumentOnce(t *testing.T) {
	src := newFakeSource(graph())
	_, err := Traverse(context.Background(), src, "A", Options{MaxDepth: 10, Logger: quietLogger()})
	require.NoError(t, err)
	for loc, n := range src.fetches {
		require.Equal(t, 1, n, "document %s fetched %d times", loc, n)
	}
}

func TestTraverse_CycleExcludesRoot(t *testing.T) {
	src := newFakeSource(map[string]string{
		"A": "Alpha\nB",
		"B": "Beta\nA\nB",
	})
	docs, err := Traverse(context.Background(), src, "A", Options{MaxDepth: 5, Logger: quietLogger()})
	require.NoError(t, err)
	require.Equal(t, []string{"B"}, locations(docs))
}

func TestTraverse_DuplicateLinksInOneDocument(t *testing.T) {
	src := newFakeSource(map[string]string{
		"A": "Alpha\nB\nB\nB",
		"B": "Beta",
	})
	docs, err := Traverse(context.Background(), src, "A", Options{MaxDepth: 2, Logger: quietLogger()})
	require.NoError(t, err)
	require.Equal(t, []string{"B"}, locations(docs))
}

func TestTraverse_DeadEndsDoNotAbort(t *testing.T) {
	src := newFakeSource(map[string]string{
		"A": "Alpha\nB\nMissing\nC",
		"B": "Beta\nD",
		"C": "Gamma",
		"D": "Delta",
	})
	src.fail["B"] = &fetch.Error{Kind: fetch.KindTimeout, Location: "B"}

	docs, err := Traverse(context.Background(), src, "A", Options{MaxDepth: 3, Logger: quietLogger()})
	require.NoError(t, err)
	// B times out: kept with its fallback title but contributes no links.
	// Missing is kept too because nothing discards it.
	require.Equal(t, []string{"B", "Missing", "C"}, locations(docs))
	require.Equal(t, "B", docs[0].Title)
}

func TestTraverse_DiscardDropsUnavailableLinks(t *testing.T) {
	src := newFakeSource(map[string]string{
		"A": "Alpha\nMissing\nC",
		"C": "Gamma",
	})
	opts := Options{MaxDepth: 2, Logger: quietLogger(), Discard: func(err error) bool {
		return fetch.Is(err, fetch.KindNotFound)
	}}

	docs, err := Traverse(context.Background(), src, "A", opts)
	require.NoError(t, err)
	require.Equal(t, []string{"C"}, locations(docs))
	// Discarded links stay visited and are not retried.
	require.Equal(t, 1, src.fetches["Missing"])
}

func TestTraverse_RootFailureIsNotFatal(t *testing.T) {
	src := newFakeSource(map[string]string{})
	docs, err := Traverse(context.Background(), src, "A", Options{MaxDepth: 2, Logger: quietLogger()})
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestTraverse_RootContentSkipsRootFetch(t *testing.T) {
	src := newFakeSource(graph())
	content := "Alpha\nC"
	docs, err := Traverse(context.Background(), src, "A", Options{MaxDepth: 1, Logger: quietLogger(), RootContent: &content})
	require.NoError(t, err)
	require.Equal(t, []string{"C"}, locations(docs))
	require.Zero(t, src.fetches["A"])
}

func TestTraverse_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs, err := Traverse(ctx, newFakeSource(graph()), "A", Options{MaxDepth: 3, Logger: quietLogger()})
	require.True(t, IsCode(err, CodeCanceled), "got %v", err)
	require.Empty(t, docs)
}
