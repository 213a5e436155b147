package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type nullifierInmemoryStore struct {
	nullifiers map[string]domain.Nullifier
	writers    map[string]struct{}
	seeded     map[string]struct{}
	locker     *sync.RWMutex
}

type nullifierRepositoryImpl struct {
	transactional
	store *nullifierInmemoryStore
}

// NewNullifierRepositoryImpl returns a new inmemory NullifierRepository
// implementation.
func NewNullifierRepositoryImpl() domain.NullifierRepository {
	return newNullifierRepositoryImpl()
}

func newNullifierRepositoryImpl() *nullifierRepositoryImpl {
	return &nullifierRepositoryImpl{
		store: &nullifierInmemoryStore{
			nullifiers: make(map[string]domain.Nullifier),
			writers:    make(map[string]struct{}),
			seeded:     make(map[string]struct{}),
			locker:     &sync.RWMutex{},
		},
	}
}

func (r *nullifierRepositoryImpl) AddNullifier(
	ctx context.Context, nullifier *domain.Nullifier,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.nullifiers[nullifier.Hash]; ok {
		return domain.ErrNullifierAlreadyUsed
	}

	r.store.nullifiers[nullifier.Hash] = *nullifier
	hash := nullifier.Hash
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		delete(r.store.nullifiers, hash)
	})
	return nil
}

func (r *nullifierRepositoryImpl) GetNullifier(
	_ context.Context, hash string,
) (*domain.Nullifier, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	nullifier, ok := r.store.nullifiers[domain.NormalizeHash(hash)]
	if !ok {
		return nil, domain.ErrNullifierNotFound
	}
	return &nullifier, nil
}

func (r *nullifierRepositoryImpl) IsNullified(
	_ context.Context, hash string,
) (bool, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	_, ok := r.store.nullifiers[domain.NormalizeHash(hash)]
	return ok, nil
}

func (r *nullifierRepositoryImpl) AddWriter(
	ctx context.Context, writer string,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.writers[writer]; ok {
		return nil
	}
	r.store.writers[writer] = struct{}{}
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		delete(r.store.writers, writer)
	})
	return nil
}

func (r *nullifierRepositoryImpl) RemoveWriter(
	ctx context.Context, writer string,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.writers[writer]; !ok {
		return nil
	}
	delete(r.store.writers, writer)
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		r.store.writers[writer] = struct{}{}
	})
	return nil
}

func (r *nullifierRepositoryImpl) GetWriters(
	_ context.Context,
) ([]string, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	writers := make([]string, 0, len(r.store.writers))
	for w := range r.store.writers {
		writers = append(writers, w)
	}
	sort.Strings(writers)
	return writers, nil
}

func (r *nullifierRepositoryImpl) SeedWriter(
	ctx context.Context, writer string,
) (bool, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.seeded[writer]; ok {
		return false, nil
	}
	_, wasWriter := r.store.writers[writer]
	r.store.seeded[writer] = struct{}{}
	r.store.writers[writer] = struct{}{}
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		delete(r.store.seeded, writer)
		if !wasWriter {
			delete(r.store.writers, writer)
		}
	})
	return true, nil
}
