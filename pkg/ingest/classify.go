package ingest

import "unicode/utf8"

// Classify decodes content as strict UTF-8. Invalid sequences make the
// file binary; nothing is replaced and a leading byte-order mark is kept.
// Empty content is text.
func Classify(path string, content []byte) ClassifiedFile {
	if !utf8.Valid(content) {
		return ClassifiedFile{Path: path, Binary: true}
	}
	return ClassifiedFile{Path: path, Text: string(content)}
}
