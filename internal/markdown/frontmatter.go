package markdown

import (
	"bytes"

	"github.com/adrg/frontmatter"
)

// stripFrontMatter returns src without a leading YAML or TOML front matter
// block. Metadata is not document content: a "title: x" line followed by the
// closing "---" would otherwise parse as a setext heading. Source whose front
// matter does not parse is returned unchanged.
func stripFrontMatter(src []byte) []byte {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return src
	}
	return body
}
