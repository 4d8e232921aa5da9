// Package path implements the kernel's path-element walker: splitting a
// path string into its leading element and the remainder, the way
// name_x descends a directory tree one component at a time.
//
// Grounded on original_source/kernel/src/fs/inode.rs's split_first.
package path

// SplitFirst returns the first path element and the remainder after
// it, skipping any number of leading and embedded slashes. ok is false
// if path contains no element at all (empty, or all slashes).
//
//	SplitFirst("a/bb/c")   -> "a",  "bb/c", true
//	SplitFirst("///a//bb") -> "a",  "bb",   true
//	SplitFirst("a")        -> "a",  "",     true
//	SplitFirst("")         -> "",   "",     false
//	SplitFirst("////")     -> "",   "",     false
func SplitFirst(p string) (first, rest string, ok bool) {
	p = skipLeadingSlash(p)
	if p == "" {
		return "", "", false
	}
	i := 0
	for i < len(p) && p[i] != '/' {
		i++
	}
	return p[:i], skipLeadingSlash(p[i:]), true
}

func skipLeadingSlash(p string) string {
	i := 0
	for i < len(p) && p[i] == '/' {
		i++
	}
	return p[i:]
}
