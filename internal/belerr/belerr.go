// Package belerr declares the closed taxonomy of errors the release engine
// returns to its callers, so that a CLI or API layer can branch on error kind
// without parsing messages.
package belerr

import "fmt"

// Kind identifies one of the fixed categories of failure the engine can
// produce. The set is closed: callers may safely exhaustively switch on it.
type Kind int

const (
	Unknown Kind = iota
	NotARepository
	DirtyWorkingTree
	RemoteNotConfigured
	ManifestParse
	FileTooLarge
	InvalidVersion
	ConventionalCommitUnparseable
	DuplicateProject
	DependencyCycle
	Io
)

func (k Kind) String() string {
	switch k {
	case NotARepository:
		return "not_a_repository"
	case DirtyWorkingTree:
		return "dirty_working_tree"
	case RemoteNotConfigured:
		return "remote_not_configured"
	case ManifestParse:
		return "manifest_parse"
	case FileTooLarge:
		return "file_too_large"
	case InvalidVersion:
		return "invalid_version"
	case ConventionalCommitUnparseable:
		return "conventional_commit_unparseable"
	case DuplicateProject:
		return "duplicate_project"
	case DependencyCycle:
		return "dependency_cycle"
	case Io:
		return "io"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with a contextual message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap builds a *Error with the given kind, message, and underlying cause.
// cause may be nil.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err is a *Error of the given kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if be, ok := err.(*Error); ok {
			if be.Kind == kind {
				return true
			}
			err = be.Cause
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
