package ccdb

import (
	"strings"
)

// normalizePath joins base and path per spec §4.3: an absolute user path
// discards base; a relative one is appended to it. '.' segments are
// dropped, '..' pops the last segment, and the result is always rejoined
// with a leading '/'. The empty result is the root, "/".
func normalizePath(base, path string) string {
	var segments []string
	push := func(value string) {
		for _, part := range strings.Split(value, "/") {
			switch part {
			case "", ".":
				continue
			case "..":
				if len(segments) > 0 {
					segments = segments[:len(segments)-1]
				}
			default:
				segments = append(segments, part)
			}
		}
	}
	if strings.HasPrefix(path, "/") {
		push(path)
	} else {
		push(base)
		push(path)
	}
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

// NamePath is a validated CCDB request path: absolute, and restricted to
// ASCII alphanumerics, '/', '_', and '-' (spec §4.3's "name paths").
type NamePath struct {
	full string
}

// ParseNamePath validates s as a name path.
func ParseNamePath(s string) (NamePath, error) {
	if !strings.HasPrefix(s, "/") {
		return NamePath{}, &NamePathError{Path: s, Reason: "must be absolute (start with '/')"}
	}
	for _, r := range s {
		if !isNamePathRune(r) {
			return NamePath{}, &NamePathError{Path: s, Reason: "illegal character"}
		}
	}
	return NamePath{full: s}, nil
}

func isNamePathRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '/', r == '_', r == '-':
		return true
	default:
		return false
	}
}

// FullPath returns the validated path string.
func (p NamePath) FullPath() string { return p.full }

// IsRoot reports whether the path is exactly "/".
func (p NamePath) IsRoot() bool { return p.full == "/" }

// Name returns the last '/'-separated segment.
func (p NamePath) Name() string {
	idx := strings.LastIndexByte(p.full, '/')
	return p.full[idx+1:]
}

// Parent returns the path with its last segment removed, or false if this
// is already the root.
func (p NamePath) Parent() (NamePath, bool) {
	if p.IsRoot() {
		return NamePath{}, false
	}
	parts := strings.Split(p.full, "/")
	parts = parts[:len(parts)-1]
	joined := strings.Join(parts, "/")
	if joined == "" {
		joined = "/"
	}
	return NamePath{full: joined}, true
}
