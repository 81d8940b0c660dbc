package app

import "strings"

const pageDelimiter = "\n\n"

// Paginate splits lesson content on blank lines into pages, in order.
// Whitespace-only segments are dropped; content without any page yields one empty page.
func Paginate(content string) []string {
	segments := strings.Split(content, pageDelimiter)
	pages := make([]string, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		pages = append(pages, seg)
	}
	if len(pages) == 0 {
		return []string{""}
	}
	return pages
}
