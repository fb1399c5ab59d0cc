package gosynth

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration-time failures. Some are returned as
// is and some wrapped (via fmt.Errorf("...: %w", ...)); callers can match
// either with errors.Is.
var (
	ErrDuplicateIdentifier    = errors.New("identifier already exists in this context")
	ErrNotFound               = errors.New("identifier not found in this context")
	ErrWrongArity             = errors.New("unexpected buffer arity")
	ErrGroupMismatch          = errors.New("grouped buffers belong to different groups")
	ErrInstanceGroupMismatch  = errors.New("group instance handle belongs to a different group")
	ErrVariadicOutOfBounds    = errors.New("variadic buffer index out of bounds")
	ErrWouldCreateCycle       = errors.New("link would create a dependency cycle")
	ErrDestroyOutputModule    = errors.New("cannot destroy the audio output module")
	ErrModuleNotFound         = errors.New("module not found")
	ErrGroupNotFound          = errors.New("group not found")
	ErrGroupedModuleNotFound  = errors.New("grouped module not found")
	ErrGroupedModuleKind      = errors.New("grouped module is not of the expected kind")
)

// IdentifierKind names what sort of thing a DuplicateIdentifier or
// NotFound error refers to, for a readable message.
type IdentifierKind string

const (
	IdentModule        IdentifierKind = "module"
	IdentGroupedModule IdentifierKind = "grouped module"
	IdentGroup         IdentifierKind = "group"
	IdentGroupInstance IdentifierKind = "group instance"
	IdentBuffer        IdentifierKind = "buffer"
)

func duplicateIdentifierErr(kind IdentifierKind, ident string) error {
	return fmt.Errorf("the %s identifier %q already exists in this context: %w", kind, ident, ErrDuplicateIdentifier)
}

func notFoundErr(kind IdentifierKind, ident string) error {
	return fmt.Errorf("the %s identifier %q was not found in this context: %w", kind, ident, ErrNotFound)
}

func wrongArityErr(wantVariadic, gotVariadic bool) error {
	want, got := "single", "variadic"
	if wantVariadic {
		want, got = got, want
	}
	return fmt.Errorf("expected a %s buffer, found a %s one: %w", want, got, ErrWrongArity)
}

// ModuleInitError wraps an error returned by a module's Initializer,
// naming the module (and, if applicable, group) it failed for.
type ModuleInitError struct {
	ModuleName string
	GroupName  string // empty if the module was not created inside a group
	Err        error
}

func (e *ModuleInitError) Error() string {
	if e.GroupName != "" {
		return fmt.Sprintf("failed to initialize module %q in group %q: %v", e.ModuleName, e.GroupName, e.Err)
	}
	return fmt.Sprintf("failed to initialize module %q: %v", e.ModuleName, e.Err)
}

func (e *ModuleInitError) Unwrap() error { return e.Err }
