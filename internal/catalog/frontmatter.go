package catalog

import (
	"strconv"
	"strings"
)

const frontMatterDelimiter = "---"

// Metadata is the parsed front-matter header of a project's index.md.
type Metadata struct {
	Title string
	Pitch string
	Type  string
	Level int
	Tags  []string
}

// ParseFrontMatter extracts the leading delimited key:value block from a
// project description document. Returns false when the document has no
// opening delimiter, the block is unterminated, or the block lacks a
// title; a malformed header never yields a partial record.
func ParseFrontMatter(content string) (*Metadata, bool) {
	if !strings.HasPrefix(content, frontMatterDelimiter) {
		return nil, false
	}
	end := strings.Index(content[len(frontMatterDelimiter):], frontMatterDelimiter)
	if end == -1 {
		return nil, false
	}
	block := content[len(frontMatterDelimiter) : len(frontMatterDelimiter)+end]

	var meta Metadata
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			meta.Title = value
		case "pitch":
			meta.Pitch = value
		case "type":
			meta.Type = value
		case "level":
			// Unparseable levels default to 0 rather than failing the
			// whole record.
			if n, err := strconv.Atoi(value); err == nil {
				meta.Level = n
			}
		case "tags":
			if value == "" {
				continue
			}
			for _, tag := range strings.Split(value, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					meta.Tags = append(meta.Tags, tag)
				}
			}
		}
	}

	if meta.Title == "" {
		return nil, false
	}
	return &meta, true
}
