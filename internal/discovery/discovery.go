// Package discovery walks the graph of markdown documents reachable from a
// root document by following in-document links, breadth first and up to a
// bounded depth.
//
// A single traversal is sequential: frontier nodes are fetched one at a time
// in FIFO order, and the visited set, the queue and the content memo are
// owned by that one call. Independent calls share no state and may run
// concurrently.
package discovery

import (
	"context"
	"log/slog"

	"github.com/dgallion1/doclinks/internal/fetch"
	"github.com/dgallion1/doclinks/internal/markdown"
)

// Document is a document discovered during a traversal.
type Document struct {
	Location string `json:"location"`
	Title    string `json:"title"`
}

// Source is the substrate a traversal runs over.
type Source interface {
	fetch.Fetcher
	// Links returns the candidate locations linked from content, which was
	// fetched from location.
	Links(content, location string) []string
	// Title returns the document's title, or "" when it has none.
	Title(content string) string
}

// Options tunes a single traversal.
type Options struct {
	MaxDepth int
	Logger   *slog.Logger

	// Discard reports whether a link whose title fetch failed with err is
	// left out of the results. Links are kept with a fallback title when
	// Discard is nil or returns false. A discarded link is still visited.
	Discard func(err error) bool

	// RootContent, when non-nil, is used as the root's content instead of
	// fetching it.
	RootContent *string
}

type frontierEntry struct {
	location string
	depth    int
}

// Traverse runs a breadth-first traversal from root and returns the
// discovered documents in discovery order. The root itself is never part of
// the result. A node is expanded only when its depth is below MaxDepth, so
// documents exactly MaxDepth hops away are fetched for their title but their
// links are never followed. Fetch failures make the node a dead end; the only
// error returned is a canceled context, together with the documents found so
// far.
func Traverse(ctx context.Context, src Source, root string, opts Options) ([]Document, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	visited := map[string]bool{root: true}
	queue := []frontierEntry{{location: root}}
	memo := make(map[string]string)
	if opts.RootContent != nil {
		memo[root] = *opts.RootContent
	}

	var discovered []Document
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return discovered, Canceled(err)
		}

		current := queue[0]
		queue = queue[1:]
		if current.depth >= opts.MaxDepth {
			continue
		}

		content, ok := memo[current.location]
		delete(memo, current.location)
		if !ok {
			var err error
			content, err = src.Fetch(ctx, current.location)
			if err != nil {
				log.Warn("fetch failed, treating as dead end",
					"location", current.location,
					"depth", current.depth,
					"kind", fetch.KindOf(err),
					"error", err,
				)
				continue
			}
		}

		next := current.depth + 1
		for _, link := range src.Links(content, current.location) {
			if visited[link] {
				continue
			}
			visited[link] = true

			title, linked, err := titleOf(ctx, src, link)
			if err != nil {
				if opts.Discard != nil && opts.Discard(err) {
					log.Warn("linked document unavailable, skipping",
						"location", link,
						"parent", current.location,
						"kind", fetch.KindOf(err),
						"error", err,
					)
					continue
				}
				log.Debug("title lookup failed, using fallback",
					"location", link,
					"kind", fetch.KindOf(err),
					"error", err,
				)
			}

			discovered = append(discovered, Document{Location: link, Title: title})
			log.Debug("discovered document", "location", link, "title", title, "depth", next)

			if err == nil && next < opts.MaxDepth {
				memo[link] = linked
			}
			queue = append(queue, frontierEntry{location: link, depth: next})
		}
	}
	return discovered, nil
}

// titleOf fetches location and extracts its title, falling back to the final
// segment of the location.
func titleOf(ctx context.Context, src Source, location string) (title, content string, err error) {
	content, err = src.Fetch(ctx, location)
	if err == nil {
		title = src.Title(content)
	}
	if title == "" {
		title = markdown.FallbackTitle(location)
	}
	return title, content, err
}
