package prettyprint

import (
	"bytes"
	"os"
	"path/filepath"
)

// Path is a filesystem path which [PathModule] renders in canonical form.
type Path string

// MissingSuffix is appended to paths that do not exist.
const MissingSuffix = " ⌫"

// PathModule renders [Path] values and [*os.File]s as canonical filesystem
// paths. Directories get a trailing separator and paths that do not exist
// are suffixed with [MissingSuffix].
type PathModule struct{}

// Accepts implements [Module].
func (PathModule) Accepts(v any) bool {
	switch v.(type) {
	case Path, *Path, *os.File:
		return true
	}

	return false
}

// Append implements [Module].
func (PathModule) Append(buf *bytes.Buffer, v any, _ int) {
	var p string

	switch x := v.(type) {
	case Path:
		p = string(x)
	case *Path:
		p = string(*x)
	case *os.File:
		p = x.Name()
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		canonical = abs
	}

	buf.WriteString(canonical)

	info, err := os.Stat(abs)

	switch {
	case err != nil:
		buf.WriteString(MissingSuffix)
	case info.IsDir() && canonical != string(filepath.Separator):
		buf.WriteRune(filepath.Separator)
	}
}
