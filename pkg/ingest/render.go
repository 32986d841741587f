package ingest

import "strings"

const (
	headerRule     = ":\n-----------------------\n\n"
	entrySeparator = "\n\n-----------------------\n\n"
)

// RenderText concatenates files as "<path>:\n---\n\n<content>" blocks
// joined by a rule. No files yields the empty string.
func RenderText(files []ClassifiedFile) string {
	var sb strings.Builder
	for i, f := range files {
		if i > 0 {
			sb.WriteString(entrySeparator)
		}
		sb.WriteString(f.Path)
		sb.WriteString(headerRule)
		sb.WriteString(f.Content())
	}
	return sb.String()
}

// RenderDocument maps each path to its text or the binary sentinel.
func RenderDocument(files []ClassifiedFile) map[string]string {
	doc := make(map[string]string, len(files))
	for _, f := range files {
		doc[f.Path] = f.Content()
	}
	return doc
}
