package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseGraph     Phase = "graph"     // CFG queries and mutation
	PhaseConstruct Phase = "construct" // SSA construction
	PhaseDestruct  Phase = "destruct"  // SSA destruction
	PhaseSimplify  Phase = "simplify"  // phi simplification
	PhaseFold      Phase = "fold"      // constant folding and propagation
	PhaseDeadCode  Phase = "deadcode"  // dead code elimination
	PhaseDeadBlock Phase = "deadblock" // dead block elimination
	PhaseVerify    Phase = "verify"    // well-formedness checks
	PhaseParse     Phase = "parse"     // textual IR reading
	PhaseConfig    Phase = "config"    // pipeline configuration
	PhaseExec      Phase = "exec"      // reference interpretation
	PhasePipeline  Phase = "pipeline"  // pass scheduling
)

// Kind categorizes the error
type Kind string

const (
	KindContract            Kind = "contract"
	KindDuplicateDefinition Kind = "duplicate_definition"
	KindMissingDefinition   Kind = "missing_definition"
	KindUnboundTarget       Kind = "unbound_target"
	KindTargetRebound       Kind = "target_rebound"
	KindLiveTarget          Kind = "live_target"
	KindPhiArity            Kind = "phi_arity"
	KindMalformed           Kind = "malformed"
	KindInvalidInput        Kind = "invalid_input"
	KindNotFound            Kind = "not_found"
	KindUnsupported         Kind = "unsupported"
	KindRuntime             Kind = "runtime"
	KindCanceled            Kind = "canceled"
)

// NoBlock marks an error that is not tied to a block ordinal.
const NoBlock = -1

// Error is the structured error type used throughout the middle-end
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string
	Detail string
	Block  int
	Line   int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Line > 0 {
		b.WriteString(" at line ")
		b.WriteString(strconv.Itoa(e.Line))
	}

	if e.Block >= 0 || e.Name != "" {
		b.WriteString(": ")
		if e.Block >= 0 && e.Name != "" {
			b.WriteString("BB")
			b.WriteString(strconv.Itoa(e.Block))
			b.WriteString(", name ")
			b.WriteString(e.Name)
		} else if e.Block >= 0 {
			b.WriteString("BB")
			b.WriteString(strconv.Itoa(e.Block))
		} else {
			b.WriteString("name ")
			b.WriteString(e.Name)
		}
	}

	if e.Detail != "" {
		if e.Block >= 0 || e.Name != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
			Block: NoBlock,
		},
	}
}

// Block sets the offending block ordinal
func (b *Builder) Block(ordinal int) *Builder {
	b.err.Block = ordinal
	return b
}

// Name sets the offending variable name
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Line sets the source line of textual IR
func (b *Builder) Line(line int) *Builder {
	b.err.Line = line
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Panic raises the constructed error as an internal fault
func (b *Builder) Panic() {
	panic(b.Build())
}

// Convenience constructors for common error patterns

// Contract panics with a contract violation. Contract violations are
// programmer errors in the caller and are never recovered by the middle-end.
func Contract(phase Phase, block int, format string, args ...any) {
	New(phase, KindContract).Block(block).Detail(format, args...).Panic()
}

// DuplicateDefinition creates an error for a name assigned more than once
func DuplicateDefinition(phase Phase, name string, count int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateDefinition,
		Block:  NoBlock,
		Name:   name,
		Detail: fmt.Sprintf("%d definitions, want exactly one", count),
		Value:  count,
	}
}

// MissingDefinition creates an error for a name with no definition
func MissingDefinition(phase Phase, name string, block int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMissingDefinition,
		Block:  block,
		Name:   name,
		Detail: "no definition found",
	}
}

// UnboundTarget creates an error for a branch target read before binding
func UnboundTarget(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnboundTarget,
		Block:  NoBlock,
		Detail: "branch target read before it was bound",
	}
}

// TargetRebound creates an error for a branch target bound twice
func TargetRebound(phase Phase, bound, requested int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTargetRebound,
		Block:  requested,
		Detail: fmt.Sprintf("branch target already bound to BB%d", bound),
		Value:  bound,
	}
}

// LiveTarget creates an error for removing a block that is still targeted
func LiveTarget(phase Phase, block, from int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLiveTarget,
		Block:  block,
		Detail: fmt.Sprintf("block is still targeted from BB%d", from),
		Value:  from,
	}
}

// PhiArity creates an error for a phi whose entries do not match its predecessors
func PhiArity(phase Phase, block int, name string, entries, preds int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPhiArity,
		Block:  block,
		Name:   name,
		Detail: fmt.Sprintf("phi has %d entries for %d predecessors", entries, preds),
	}
}

// Malformed creates a well-formedness error
func Malformed(phase Phase, block int, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformed,
		Block:  block,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Block:  NoBlock,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Block:  NoBlock,
		Detail: detail,
	}
}

// Unsupported creates an unsupported-operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Block:  NoBlock,
		Detail: fmt.Sprintf("%s is not supported", what),
	}
}

// Runtime creates an interpreter runtime error
func Runtime(block int, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindRuntime,
		Block:  block,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Canceled wraps a context error observed at a fixpoint boundary
func Canceled(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCanceled,
		Block:  NoBlock,
		Detail: "pass interrupted",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Block:  NoBlock,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a textual IR parsing error
func ParseFailed(line int, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidInput,
		Block:  NoBlock,
		Line:   line,
		Detail: detail,
		Cause:  cause,
	}
}

// ConfigFailed creates a configuration loading error
func ConfigFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Block:  NoBlock,
		Detail: detail,
		Cause:  cause,
	}
}
