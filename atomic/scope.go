package atomic

import "github.com/aleo-chain/mapstore/codec"

// ErrAlreadyBatching is returned by Finalize when c already has a batch in
// progress on entry — calling Finalize is only valid from Idle, the same
// precondition datamap.Map.StartAtomic asserts by panicking. Finalize
// reports it as an ordinary error instead of panicking because, unlike
// StartAtomic, it owns the whole batch lifecycle itself and can fail
// cleanly before ever touching c.
var ErrAlreadyBatching = codec.Newf(codec.InvalidState, "atomic.Finalize", "called while a batch is already in progress")

// Mode selects what Finalize does when fn returns without error: RealRun
// commits the batch, DryRun always rewinds/aborts it regardless of outcome
// (used to preview the effect of fn without persisting it).
type Mode int

const (
	RealRun Mode = iota
	DryRun
)

// Scope runs fn under a nestable atomic batch on c. The outermost call
// starts the batch and, on success, finishes it (committing every op
// serialized by every nested call); a nested call instead checkpoints
// before fn and rewinds to that checkpoint only if fn fails, so a nested
// failure only undoes the nested call's own writes, while a nested success
// leaves them in the overlay for the outermost call to commit. Any panic from fn propagates after the scope is
// unwound via rewind/abort, so the controller is never left mid-batch.
//
// This mirrors the language-level atomic_batch_scope construct: callers
// write ordinary sequential code, and the call tree determines whether
// each layer's writes survive.
func Scope(c Controller, fn func() error) (err error) {
	if !c.IsAtomicInProgress() {
		return outerScope(c, fn)
	}
	return nestedScope(c, fn)
}

func outerScope(c Controller, fn func() error) (err error) {
	c.StartAtomic()
	defer func() {
		if p := recover(); p != nil {
			c.AbortAtomic()
			panic(p)
		}
	}()

	if err = fn(); err != nil {
		c.AbortAtomic()
		return err
	}
	return c.FinishAtomic()
}

func nestedScope(c Controller, fn func() error) (err error) {
	c.AtomicCheckpoint()
	defer func() {
		if p := recover(); p != nil {
			c.AtomicRewind()
			panic(p)
		}
	}()

	if err = fn(); err != nil {
		c.AtomicRewind()
		return err
	}
	return nil
}

// Finalize runs fn under a fresh outer atomic batch on c and applies mode:
// RealRun commits on success and aborts on error (same as Scope called with
// no batch in progress); DryRun always aborts, regardless of whether fn
// succeeded, so its writes are never observed outside the call. Finalize
// requires c to be idle on entry — calling it while a batch is already in
// progress is a programming error and returns an error rather than
// corrupting an unrelated in-flight batch.
func Finalize(c Controller, mode Mode, fn func() error) error {
	if c.IsAtomicInProgress() {
		return ErrAlreadyBatching
	}

	c.StartAtomic()
	defer func() {
		if p := recover(); p != nil {
			c.AbortAtomic()
			panic(p)
		}
	}()

	ferr := fn()
	if mode == DryRun {
		c.AbortAtomic()
		return ferr
	}
	if ferr != nil {
		c.AbortAtomic()
		return ferr
	}
	return c.FinishAtomic()
}
