package inmemory

import (
	"context"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/storageutil/uow"
)

const txKey = "tx"

// journal is the transaction shared by all the inmemory repositories. Every
// write made in the scope of a transaction records the function that
// restores the previous state, run in reverse order on rollback.
type journal struct {
	locker sync.Mutex
	undo   []func()
}

func (j *journal) Commit() error {
	j.locker.Lock()
	defer j.locker.Unlock()

	j.undo = nil
	return nil
}

func (j *journal) Rollback() error {
	j.locker.Lock()
	undo := j.undo
	j.undo = nil
	j.locker.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
	return nil
}

func (j *journal) record(fn func()) {
	j.locker.Lock()
	defer j.locker.Unlock()

	j.undo = append(j.undo, fn)
}

// recordUndo adds fn to the journal of the context's transaction, if any.
func recordUndo(ctx context.Context, fn func()) {
	if tx, ok := ctx.Value(txKey).(*journal); ok {
		tx.record(fn)
	}
}

// transactional is embedded by all repositories to let them take part to a
// unit of work. They all share the same context key and therefore the same
// journal.
type transactional struct{}

func (transactional) Begin() (uow.Tx, error) {
	return &journal{}, nil
}

func (transactional) ContextKey() interface{} {
	return txKey
}
