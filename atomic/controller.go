// Package atomic provides the composite atomic-batch protocol
// (atomic_batch_scope, atomic_finalize) over anything satisfying Controller
// — a single datamap.Map or a finalize.Store fanning the same six calls out
// across several maps. Neither caller needs to know which.
package atomic

// Controller is the six-operation state machine every atomic batch
// participant exposes: a single datamap.Map[K,V] implements it directly;
// finalize.Store implements it by fanning each call out across its member
// maps.
type Controller interface {
	StartAtomic()
	IsAtomicInProgress() bool
	AtomicCheckpoint()
	AtomicRewind()
	AbortAtomic()
	FinishAtomic() error
}
