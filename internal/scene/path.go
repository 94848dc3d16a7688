package scene

import "strings"

// PathSeparator separates path segments.
const PathSeparator = "/"

// JoinPath joins a parent path and a local name. An empty parent
// yields the local name itself.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + PathSeparator + name
}

// ParentPath returns the path of the entity's parent, or "" for a
// top-level entity.
func ParentPath(path string) string {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return ""
	}
	return path[:i]
}

// LocalName returns the last segment of the path.
func LocalName(path string) string {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return path
	}
	return path[i+1:]
}

// IsDescendant reports whether path lies strictly below ancestor.
func IsDescendant(path, ancestor string) bool {
	return strings.HasPrefix(path, ancestor+PathSeparator)
}

// IsSelfOrDescendant reports whether path equals ancestor or lies
// below it.
func IsSelfOrDescendant(path, ancestor string) bool {
	return path == ancestor || IsDescendant(path, ancestor)
}

// RelativePath returns path relative to ancestor ("" when equal).
// The result is unspecified when path is not under ancestor.
func RelativePath(path, ancestor string) string {
	if path == ancestor {
		return ""
	}
	return strings.TrimPrefix(path, ancestor+PathSeparator)
}

// Depth returns the number of segments in the path.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, PathSeparator) + 1
}
