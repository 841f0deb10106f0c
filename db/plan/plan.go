// Package plan implements the pull-based plan-node iterator protocol and
// the physical operators built on top of it: FileScan, SimpleFilter,
// Project, Sort, Rename, and NestedLoopsJoin.
package plan

import (
	"nanodb/db/cost"
	"nanodb/db/errs"
	"nanodb/db/schema"
	"nanodb/db/tuple"
)

// State is a plan node's lifecycle stage. Every node starts Fresh and
// moves forward through this sequence, except that Streaming and Marked
// alternate and Initialize restarts a CleanedUp node (see Node); calling
// an operation out of order is a programming error, reported as a PlanError rather than a
// panic so a faulty caller (e.g. a REPL driving a plan directly) gets a
// catchable error instead of crashing the process.
type State int

const (
	Fresh State = iota
	Prepared
	Initialised
	Streaming
	Marked
	Exhausted
	CleanedUp
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "Fresh"
	case Prepared:
		return "Prepared"
	case Initialised:
		return "Initialised"
	case Streaming:
		return "Streaming"
	case Marked:
		return "Marked"
	case Exhausted:
		return "Exhausted"
	case CleanedUp:
		return "CleanedUp"
	default:
		return "Unknown"
	}
}

// ErrEndOfStream is returned by Next when the node has no more rows to
// produce. It is a sentinel, not a failure — callers compare with == or
// errors.Is, never log it as an error condition.
var ErrEndOfStream = errs.PlanErrorf("end of stream")

// Node is the interface every plan node (logical or physical) satisfies.
// The required call sequence is:
//
//	Prepare()                          Fresh -> Prepared
//	Initialize()                       Prepared -> Initialised|Streaming
//	Next() repeatedly                  Streaming -> Streaming | -> Exhausted
//	Mark() / ResetToMark() (optional)  Streaming <-> Marked
//	Cleanup()                          any -> CleanedUp
//
// Initialize may be called again after Cleanup to rewind and re-execute
// the same prepared node (e.g. the inner side of a nested-loops join,
// re-driven once per outer row) without calling Prepare again.
type Node interface {
	// Prepare computes the node's output schema and cost estimate. Must be
	// called exactly once, before Initialize. A failure here is fatal —
	// the node cannot be used at all.
	Prepare() error
	// Schema returns the prepared output schema. Valid only after Prepare.
	Schema() *schema.Schema
	// Cost returns the prepared cost estimate. Valid only after Prepare.
	Cost() cost.PlanCost
	// Initialize (re)starts iteration from the first row. Valid after
	// Prepare, and again after Cleanup to re-drive the same node.
	Initialize() error
	// Next advances to and returns the next tuple, or ErrEndOfStream once
	// exhausted. A failure here aborts the stream — the engine does not
	// retry a failed Next.
	Next() (tuple.Tuple, error)
	// Mark records the current stream position so a later ResetToMark can
	// return to it. Not every node supports marking; nodes that don't
	// return a PlanError.
	Mark() error
	// ResetToMark rewinds the stream to the position recorded by the most
	// recent Mark.
	ResetToMark() error
	// ResultsOrderedBy reports the column indexes (into Schema()) this
	// node's output is already sorted by, in order, or nil if unordered.
	// Sort reports its keys and pass-through nodes report their child's;
	// Sort itself does not consult its child's order and always sorts.
	ResultsOrderedBy() []int
	// Cleanup releases any resources (open files, pinned pages, child
	// nodes) the node is holding. Idempotent.
	Cleanup() error
}

// base centralises state-machine bookkeeping so every concrete operator
// only has to implement its own data-producing logic plus thin wrappers
// calling into these transition guards.
type base struct {
	state State
}

func (b *base) requirePrepare() error {
	if b.state != Fresh {
		return errs.PlanErrorf("Prepare called in state %s, want Fresh", b.state)
	}
	return nil
}

func (b *base) afterPrepare() { b.state = Prepared }

func (b *base) requireInitialize() error {
	switch b.state {
	case Prepared, CleanedUp:
		return nil
	default:
		return errs.PlanErrorf("Initialize called in state %s, want Prepared or CleanedUp", b.state)
	}
}

func (b *base) afterInitialize() { b.state = Streaming }

func (b *base) requireNext() error {
	switch b.state {
	case Streaming, Marked:
		return nil
	default:
		return errs.PlanErrorf("Next called in state %s, want Streaming or Marked", b.state)
	}
}

func (b *base) markExhausted() { b.state = Exhausted }

func (b *base) requireMark() error {
	switch b.state {
	case Streaming, Marked:
		return nil
	default:
		return errs.PlanErrorf("Mark called in state %s, want Streaming or Marked", b.state)
	}
}

func (b *base) afterMark() { b.state = Marked }

func (b *base) requireResetToMark() error {
	if b.state != Marked {
		return errs.PlanErrorf("ResetToMark called in state %s, want Marked", b.state)
	}
	return nil
}

func (b *base) afterReset() { b.state = Streaming }

func (b *base) cleanup() { b.state = CleanedUp }
