package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// PathSeparator separates the segments of a path
const PathSeparator = "."

var pathRegex = regexp.MustCompile(`^[1-9][0-9]*(\.[1-9][0-9]*)*$`)

// ValidatePath checks that a path is a dotted sequence of positive integers
func ValidatePath(path string) error {
	if !pathRegex.MatchString(path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}

// segments splits a path into its numeric parts.
// Unparseable segments count as 0 so that ordering never fails.
func segments(path string) []int {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, PathSeparator)
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		nums[i] = n
	}
	return nums
}

// ComparePaths orders paths numerically, segment by segment.
// A missing trailing segment compares as 0, so "1" sorts before "1.1"
// and "1.2" before "1.10".
func ComparePaths(a, b string) int {
	as, bs := segments(a), segments(b)
	for i := 0; i < max(len(as), len(bs)); i++ {
		var x, y int
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	// Equal segment values ("1" vs "1.0") still need a deterministic order
	return len(as) - len(bs)
}

// Depth returns the nesting level of a path (root = 0)
func Depth(path string) int {
	return strings.Count(path, PathSeparator)
}

// ParentPath returns all segments but the last; ok is false for roots
func ParentPath(path string) (string, bool) {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return "", false
	}
	return path[:i], true
}

// IsRootPath reports whether the path has a single segment
func IsRootPath(path string) bool {
	return !strings.Contains(path, PathSeparator)
}

// IsDescendantOf reports whether path lies strictly below ancestor.
// Matching happens on segment boundaries: "10" is not below "1".
func IsDescendantOf(path, ancestor string) bool {
	if ancestor == "" {
		return false
	}
	return strings.HasPrefix(path, ancestor+PathSeparator)
}

// IsChildOf reports whether path is an immediate child of parent.
// An empty parent matches root paths.
func IsChildOf(path, parent string) bool {
	if parent == "" {
		return IsRootPath(path)
	}
	return IsDescendantOf(path, parent) && Depth(path) == Depth(parent)+1
}

// ChildPath builds the path of the index-th (1-based) child of parent
func ChildPath(parent string, index int) string {
	if parent == "" {
		return strconv.Itoa(index)
	}
	return parent + PathSeparator + strconv.Itoa(index)
}

// NextPath increments the final segment of a path
// e.g., "1.2.3" -> "1.2.4"
func NextPath(path string) string {
	parent, _ := ParentPath(path)
	segs := segments(path)
	if len(segs) == 0 {
		return "1"
	}
	return ChildPath(parent, segs[len(segs)-1]+1)
}

// LastSegment returns the final segment of a path as an integer
func LastSegment(path string) int {
	segs := segments(path)
	if len(segs) == 0 {
		return 0
	}
	return segs[len(segs)-1]
}

// SortByPath sorts nodes in place by path order. Ties keep their input order.
func SortByPath(nodes []Node) {
	slices.SortStableFunc(nodes, func(a, b Node) int {
		return ComparePaths(a.Path, b.Path)
	})
}

// SortedByPath returns a sorted copy of nodes
func SortedByPath(nodes []Node) []Node {
	out := slices.Clone(nodes)
	SortByPath(out)
	return out
}
