package discovery

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/doclinks/internal/fetch"
	"github.com/dgallion1/doclinks/internal/markdown"
)

// LocalDocument is the wire shape of a document found on disk.
type LocalDocument struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Local discovers markdown files linked from a file on the local filesystem.
type Local struct {
	fetcher fetch.Fetcher
	log     *slog.Logger

	// Confine, when set, restricts traversal to files under this directory.
	// Roots outside it are rejected and links leaving it are ignored.
	Confine string
}

// NewLocal returns a Local discoverer reading through f. A nil f reads the
// filesystem directly.
func NewLocal(f fetch.Fetcher, log *slog.Logger) *Local {
	if f == nil {
		f = fetch.FileFetcher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Local{fetcher: f, log: log}
}

// Discover returns the markdown documents reachable from rootPath within
// maxDepth link hops, in discovery order.
func (l *Local) Discover(ctx context.Context, rootPath string, maxDepth int) ([]LocalDocument, error) {
	if maxDepth < 0 {
		return nil, newError(CodeInvalidInput, "max depth must not be negative, got %d", maxDepth)
	}
	if strings.TrimSpace(rootPath) == "" {
		return nil, newError(CodeInvalidInput, "root path is required")
	}

	root, err := canonicalRoot(rootPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, wrapError(CodeNotFound, err, "file does not exist: %s", rootPath)
	}
	if err != nil {
		return nil, wrapError(CodeInvalidInput, err, "resolve root path %s", rootPath)
	}

	confine := ""
	if l.Confine != "" {
		confine, err = canonicalRoot(l.Confine)
		if err != nil {
			return nil, wrapError(CodeInvalidInput, err, "resolve confining directory %s", l.Confine)
		}
		if !within(confine, root) {
			return nil, Forbidden("%s is outside %s", rootPath, l.Confine)
		}
	}

	log := l.log.With("root", root, "max_depth", maxDepth)
	src := &localSource{Fetcher: l.fetcher, confine: confine}
	docs, err := Traverse(ctx, src, root, Options{MaxDepth: maxDepth, Logger: log})

	out := make([]LocalDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, LocalDocument{Path: d.Location, Title: d.Title})
	}
	log.Info("local discovery finished", "documents", len(out))
	return out, err
}

func canonicalRoot(p string) (string, error) {
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// within reports whether path is dir or lies beneath it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

type localSource struct {
	fetch.Fetcher
	confine string
}

func (s *localSource) Links(content, location string) []string {
	links := markdown.LocalLinks([]byte(content), location)
	if s.confine == "" {
		return links
	}
	kept := links[:0]
	for _, link := range links {
		if within(s.confine, link) {
			kept = append(kept, link)
		}
	}
	return kept
}

func (s *localSource) Title(content string) string {
	return markdown.Title([]byte(content), markdown.AnyLevel)
}
