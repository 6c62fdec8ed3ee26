package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/dgallion1/doclinks/internal/fetch"
	"github.com/dgallion1/doclinks/internal/markdown"
)

// DefaultRawGitHubBase serves raw file contents of GitHub repositories.
const DefaultRawGitHubBase = "https://raw.githubusercontent.com"

// readmeBranches are probed in order when the root is a GitHub repository.
var readmeBranches = []string{"main", "master"}

var githubRepoRe = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// RemoteDocument is the wire shape of a document found over HTTP.
type RemoteDocument struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Remote discovers markdown documents served over HTTP(S). Discover blocks on
// network I/O for its whole duration; use DiscoverAsync to run it on its own
// goroutine.
type Remote struct {
	fetcher fetch.Fetcher
	log     *slog.Logger

	// RawGitHubBase replaces DefaultRawGitHubBase when set.
	RawGitHubBase string
}

// NewRemote returns a Remote discoverer fetching through f. A nil f uses an
// HTTPFetcher with default options.
func NewRemote(f fetch.Fetcher, log *slog.Logger) *Remote {
	if f == nil {
		f = fetch.NewHTTPFetcher(fetch.HTTPOptions{})
	}
	if log == nil {
		log = slog.Default()
	}
	return &Remote{fetcher: f, log: log}
}

// Result is the outcome of an asynchronous discovery.
type Result struct {
	Documents []RemoteDocument
	Err       error
}

// Discover returns the documents reachable from rootURL within maxDepth link
// hops, in discovery order. A GitHub repository URL is first resolved to the
// raw README of its main or master branch.
func (r *Remote) Discover(ctx context.Context, rootURL string, maxDepth int) ([]RemoteDocument, error) {
	if maxDepth < 0 {
		return nil, newError(CodeInvalidInput, "max depth must not be negative, got %d", maxDepth)
	}
	rootURL, err := normalizeRootURL(rootURL)
	if err != nil {
		return nil, err
	}

	opts := Options{
		MaxDepth: maxDepth,
		Discard:  discardUnavailable,
	}

	root := rootURL
	if owner, repo, ok := GitHubRepo(rootURL); ok {
		readmeURL, content, err := r.githubReadme(ctx, owner, repo)
		if err != nil {
			return nil, err
		}
		r.log.Info("resolved github repository", "repo", rootURL, "readme", readmeURL)
		root = readmeURL
		opts.RootContent = &content
	}

	log := r.log.With("root", root, "max_depth", maxDepth)
	opts.Logger = log
	docs, err := Traverse(ctx, remoteSource{Fetcher: r.fetcher}, root, opts)

	out := make([]RemoteDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, RemoteDocument{URL: d.Location, Title: d.Title})
	}
	log.Info("remote discovery finished", "documents", len(out))
	return out, err
}

// DiscoverAsync runs Discover on a new goroutine. The returned channel yields
// exactly one Result and is then closed. A panic inside the discovery is
// reported as a CodeTaskFailure error.
func (r *Remote) DiscoverAsync(ctx context.Context, rootURL string, maxDepth int) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		defer func() {
			if p := recover(); p != nil {
				r.log.Error("remote discovery panicked", "root", rootURL, "panic", p)
				ch <- Result{Err: TaskFailure(p)}
			}
		}()
		docs, err := r.Discover(ctx, rootURL, maxDepth)
		ch <- Result{Documents: docs, Err: err}
	}()
	return ch
}

// normalizeRootURL validates rootURL and returns it in the form link
// resolution produces, without a fragment, so that a link back to the root
// matches the visited entry.
func normalizeRootURL(rootURL string) (string, error) {
	rootURL = strings.TrimSpace(rootURL)
	if rootURL == "" {
		return "", newError(CodeInvalidInput, "root url is required")
	}
	u, err := url.Parse(rootURL)
	if err != nil {
		return "", wrapError(CodeInvalidInput, err, "invalid root url %q", rootURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", newError(CodeInvalidInput, "root url must be an absolute http or https url, got %q", rootURL)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// GitHubRepo extracts owner and repository from a GitHub repository URL of
// the form https://github.com/<owner>/<repo>, optionally ending in .git or a
// slash.
func GitHubRepo(rawURL string) (owner, repo string, ok bool) {
	m := githubRepoRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ReadmeURL returns the raw README.md URL of a repository branch.
func (r *Remote) ReadmeURL(owner, repo, branch string) string {
	base := r.RawGitHubBase
	if base == "" {
		base = DefaultRawGitHubBase
	}
	return fmt.Sprintf("%s/%s/%s/refs/heads/%s/README.md", strings.TrimRight(base, "/"), owner, repo, branch)
}

func (r *Remote) githubReadme(ctx context.Context, owner, repo string) (string, string, error) {
	var lastErr error
	for _, branch := range readmeBranches {
		u := r.ReadmeURL(owner, repo, branch)
		content, err := r.fetcher.Fetch(ctx, u)
		if err == nil {
			return u, content, nil
		}
		r.log.Debug("readme probe failed", "url", u, "kind", fetch.KindOf(err), "error", err)
		lastErr = err
	}
	return "", "", wrapError(CodeNotFound, lastErr, "README not found on main or master for %s/%s", owner, repo)
}

// discardUnavailable drops links whose target answered definitively that it
// is not a usable document. Transport failures keep the link with a
// fallback title.
func discardUnavailable(err error) bool {
	return !fetch.IsTransient(err)
}

type remoteSource struct {
	fetch.Fetcher
}

func (remoteSource) Links(content, location string) []string {
	base, err := url.Parse(location)
	if err != nil {
		return nil
	}
	return markdown.RemoteLinks([]byte(content), base)
}

// Title only considers top-level headings; local documents accept any level.
func (remoteSource) Title(content string) string {
	return markdown.Title([]byte(content), 1)
}
