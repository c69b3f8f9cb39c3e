package template

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// ErrorKind classifies a variable resolution failure.
type ErrorKind string

const (
	// ErrFileNotFound means a file-backed variable points at a path that
	// does not exist under the workspace root.
	ErrFileNotFound ErrorKind = "file_not_found"
	// ErrFileUnreadable means the file exists but could not be read or does
	// not decode as text.
	ErrFileUnreadable ErrorKind = "file_unreadable"
	// ErrBadSpec means the variable specification itself is malformed.
	ErrBadSpec ErrorKind = "bad_spec"
)

// ResolveError reports why a variable failed to resolve.
type ResolveError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ResolveError) Error() string {
	switch e.Kind {
	case ErrFileNotFound:
		return fmt.Sprintf("file not found: %s", e.Path)
	case ErrFileUnreadable:
		return fmt.Sprintf("file unreadable: %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("bad variable spec: %v", e.Err)
	}
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Resolve turns a variable specification into its text value. File-backed
// variables are read from workspaceRoot joined with the spec path at call
// time; no containment check is applied, so relative references may reach
// sibling directories. A non-nil error is always a *ResolveError.
func Resolve(spec VarSpec, workspaceRoot string) (string, error) {
	switch s := spec.(type) {
	case ValueSpec:
		return s.Value, nil
	case FileSpec:
		full := filepath.Join(workspaceRoot, filepath.FromSlash(s.Path))
		data, err := os.ReadFile(full)
		if err != nil {
			if os.IsNotExist(err) {
				return "", &ResolveError{Kind: ErrFileNotFound, Path: s.Path, Err: err}
			}
			return "", &ResolveError{Kind: ErrFileUnreadable, Path: s.Path, Err: err}
		}
		if !utf8.Valid(data) {
			return "", &ResolveError{Kind: ErrFileUnreadable, Path: s.Path, Err: fmt.Errorf("content is not valid UTF-8")}
		}
		return string(data), nil
	default:
		return "", &ResolveError{Kind: ErrBadSpec, Err: fmt.Errorf("unhandled spec variant %T", spec)}
	}
}
