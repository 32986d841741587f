// Package ingest fetches a repository branch archive, decodes it in memory,
// filters the file set by extension and directory rules and renders the
// survivors as a document or as concatenated text.
//
// Every value here is request-scoped; nothing is shared between calls to
// Service.Ingest.
package ingest

// DefaultBranch is used when a request names no branch.
const DefaultBranch = "main"

// BinarySentinel replaces the content of files that are not valid UTF-8.
const BinarySentinel = "Binary or non-UTF-8 encoded data"

// ArchiveRequest identifies the archive to fetch and the filters to apply.
// A nil filter list disables that predicate.
type ArchiveRequest struct {
	Owner      string
	Repo       string
	Branch     string
	IncludeExt []string
	ExcludeExt []string
	ExcludeDir []string
}

// Filter returns the path filter described by the request.
func (r ArchiveRequest) Filter() Filter {
	return NewFilter(r.IncludeExt, r.ExcludeExt, r.ExcludeDir)
}

// FileSet maps archive paths to raw content, iterating in archive entry order.
// It is built once by Decode and never modified afterwards.
type FileSet struct {
	paths   []string
	content map[string][]byte
}

// Paths returns the archive paths in entry order.
func (fs *FileSet) Paths() []string {
	out := make([]string, len(fs.paths))
	copy(out, fs.paths)
	return out
}

// Content returns the raw bytes stored for path.
func (fs *FileSet) Content(path string) ([]byte, bool) {
	b, ok := fs.content[path]
	return b, ok
}

// Len reports the number of files in the set.
func (fs *FileSet) Len() int {
	return len(fs.paths)
}

// ClassifiedFile is a decoded file whose content is either UTF-8 text or
// marked as binary.
type ClassifiedFile struct {
	Path   string
	Text   string
	Binary bool
}

// Content returns the text, or BinarySentinel for binary files.
func (f ClassifiedFile) Content() string {
	if f.Binary {
		return BinarySentinel
	}
	return f.Text
}

// Result is the outcome of a successful ingest.
type Result struct {
	// Files holds the filtered, classified files in archive order.
	Files []ClassifiedFile
	// TotalFiles is the number of files in the archive before filtering.
	TotalFiles   int
	ArchiveBytes int
}

// Text renders the result in textual mode.
func (r *Result) Text() string {
	return RenderText(r.Files)
}

// Document renders the result in structured mode.
func (r *Result) Document() map[string]string {
	return RenderDocument(r.Files)
}
