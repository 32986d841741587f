package ingest

import "strings"

// Filter holds the three path predicates. A nil list disables its
// predicate; an empty but non-nil list is active and matches nothing.
type Filter struct {
	IncludeExt []string
	ExcludeExt []string
	ExcludeDir []string
}

// NewFilter builds a Filter from already-parsed lists. Pass nil to disable a
// predicate.
func NewFilter(includeExt, excludeExt, excludeDir []string) Filter {
	return Filter{IncludeExt: includeExt, ExcludeExt: excludeExt, ExcludeDir: excludeDir}
}

// Match reports whether path passes every active predicate.
func (f Filter) Match(path string) bool {
	return f.included(path) && !f.excludedExt(path) && !f.excludedDir(path)
}

// Apply returns the paths that pass Match, keeping their order.
func (f Filter) Apply(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filter) included(path string) bool {
	if f.IncludeExt == nil {
		return true
	}
	return hasAnyExt(path, f.IncludeExt)
}

func (f Filter) excludedExt(path string) bool {
	if f.ExcludeExt == nil {
		return false
	}
	return hasAnyExt(path, f.ExcludeExt)
}

// excludedDir matches any path component, the file name included.
func (f Filter) excludedDir(path string) bool {
	if f.ExcludeDir == nil {
		return false
	}
	for _, part := range strings.Split(path, "/") {
		for _, dir := range f.ExcludeDir {
			if part == dir {
				return true
			}
		}
	}
	return false
}

func hasAnyExt(path string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, "."+ext) {
			return true
		}
	}
	return false
}

// ParseList splits a comma-separated query value. An absent parameter
// yields nil. A present but empty value yields a single empty element.
func ParseList(raw string, present bool) []string {
	if !present {
		return nil
	}
	return strings.Split(raw, ",")
}
