package markdown

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// markdownExtensions lists the extensions treated as markdown documents.
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// IsMarkdownPath reports whether p names a markdown document by extension.
func IsMarkdownPath(p string) bool {
	return markdownExtensions[strings.ToLower(filepath.Ext(p))]
}

func isExternal(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}

// stripFragment drops anchor-only links and any trailing "#..." fragment.
// ok is false when nothing usable remains.
func stripFragment(link string) (string, bool) {
	if strings.HasPrefix(link, "#") {
		return "", false
	}
	link, _, _ = strings.Cut(link, "#")
	return link, link != ""
}

// LocalLinks returns the canonical absolute paths of the markdown files that
// the document at docPath links to. External URLs, anchors, links that do not
// resolve to an existing file and non-markdown targets are dropped.
func LocalLinks(src []byte, docPath string) []string {
	baseDir := filepath.Dir(docPath)
	var out []string
	for _, link := range Links(src) {
		if resolved, ok := ResolveLocal(link, baseDir); ok {
			out = append(out, resolved)
		}
	}
	return out
}

// ResolveLocal resolves a single link destination against baseDir.
func ResolveLocal(link, baseDir string) (string, bool) {
	if isExternal(link) {
		return "", false
	}
	link, ok := stripFragment(link)
	if !ok {
		return "", false
	}
	full := link
	if !filepath.IsAbs(full) {
		full = filepath.Join(baseDir, link)
	}
	canonical, err := canonicalize(full)
	if err != nil {
		return "", false
	}
	if !IsMarkdownPath(canonical) {
		return "", false
	}
	return canonical, true
}

func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ResolveRelative resolves rel against the directory of the file basePath and
// returns its canonical path. The target must exist.
func ResolveRelative(basePath, rel string) (string, error) {
	full := rel
	if !filepath.IsAbs(full) {
		full = filepath.Join(filepath.Dir(basePath), rel)
	}
	canonical, err := canonicalize(full)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return canonical, nil
}

// RemoteLinks returns the absolute URLs of the documents that the remote
// document at base links to. A link is kept when it ends in a markdown
// extension, or when it is relative and its final segment has no extension
// at all; remote sites frequently serve markdown from extensionless paths.
func RemoteLinks(src []byte, base *url.URL) []string {
	var out []string
	for _, link := range Links(src) {
		if resolved, ok := ResolveRemote(link, base); ok {
			out = append(out, resolved)
		}
	}
	return out
}

// ResolveRemote resolves a single link destination against base.
func ResolveRemote(link string, base *url.URL) (string, bool) {
	link, ok := stripFragment(link)
	if !ok {
		return "", false
	}

	ref, err := url.Parse(link)
	if err != nil {
		return "", false
	}

	var resolved *url.URL
	relative := false
	switch {
	case isExternal(link):
		resolved = ref
	case ref.Scheme != "":
		// mailto:, ftp: and friends are never documents.
		return "", false
	default:
		relative = true
		resolved = base.ResolveReference(ref)
	}

	if IsMarkdownPath(resolved.Path) {
		return resolved.String(), true
	}
	if relative && !strings.Contains(lastSegment(ref.Path), ".") {
		return resolved.String(), true
	}
	return "", false
}

// lastSegment returns the final non-empty segment of a slash separated path.
func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "."
	}
	return path.Base(p)
}

// FallbackTitle derives a title from the final segment of a path or URL.
func FallbackTitle(location string) string {
	var seg string
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		seg = u.Path
	} else {
		seg = filepath.ToSlash(location)
	}
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	if seg == "" {
		return "Untitled"
	}
	return seg
}
