package report

import "fmt"

// ErrorKind classifies a diagnostic by the compilation stage and rule that
// produced it.  The kind of a diagnostic determines whether the build can
// proceed: lexical, syntactic, and semantic errors are accumulated per module,
// while codegen and dependency errors abort the enclosing build immediately.
type ErrorKind int

const (
	LexError ErrorKind = iota
	ParseError

	// Semantic error kinds.
	UnresolvedSymbol
	AmbiguousOverload
	TypeMismatch
	UnknownField
	StructContainmentCycle
	DuplicateDefinition
	IncompleteTraitImpl

	// CodegenError indicates an internal compiler defect: a construct reached
	// code generation without a fully resolved type.
	CodegenError

	// Dependency error kinds.
	MissingDependency
	CyclicDependency
	VersionConflict
)

var errorKindNames = map[ErrorKind]string{
	LexError:               "lex error",
	ParseError:             "parse error",
	UnresolvedSymbol:       "unresolved symbol",
	AmbiguousOverload:      "ambiguous overload",
	TypeMismatch:           "type mismatch",
	UnknownField:           "unknown field",
	StructContainmentCycle: "struct containment cycle",
	DuplicateDefinition:    "duplicate definition",
	IncompleteTraitImpl:    "incomplete trait implementation",
	CodegenError:           "codegen error",
	MissingDependency:      "missing dependency",
	CyclicDependency:       "cyclic dependency",
	VersionConflict:        "version conflict",
}

func (k ErrorKind) String() string {
	return errorKindNames[k]
}

// IsFatal returns whether a diagnostic of this kind aborts the whole build
// rather than just excluding its module from code generation.
func (k ErrorKind) IsFatal() bool {
	switch k {
	case CodegenError, MissingDependency, CyclicDependency, VersionConflict:
		return true
	}

	return false
}

// -----------------------------------------------------------------------------

// Diagnostic is a structured compilation message.  The core only ever returns
// diagnostics as data: formatting and printing are left to the CLI.
type Diagnostic struct {
	// The representative path of the source file the diagnostic occurred in.
	// Empty for diagnostics that are not tied to a file (eg. dependency errors).
	File string

	// The span over which the diagnostic occurs.  May be nil.
	Span *TextSpan

	Kind    ErrorKind
	Message string
}

func (d *Diagnostic) Error() string {
	if d.File == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}

	if d.Span == nil {
		return fmt.Sprintf("%s: %s: %s", d.File, d.Kind, d.Message)
	}

	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Span.StartLine+1, d.Span.StartCol+1, d.Kind, d.Message)
}

// -----------------------------------------------------------------------------

// LocalError is a compilation error raised in a context in which the file is
// known by the surrounding handler and thus doesn't need to be carried along
// with the error.  Phases raise local errors via panic and catch them at their
// definition boundary.
type LocalError struct {
	// The error message.
	Message string

	// The error kind used when the error is converted into a diagnostic.
	Kind ErrorKind

	// The span over which the error occurs.
	Span *TextSpan
}

func (le *LocalError) Error() string {
	return le.Message
}

// Raise creates a new local compile error of the given kind.
func Raise(kind ErrorKind, span *TextSpan, msg string, args ...interface{}) *LocalError {
	return &LocalError{Message: fmt.Sprintf(msg, args...), Kind: kind, Span: span}
}
