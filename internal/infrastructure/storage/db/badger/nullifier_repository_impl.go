package dbbadger

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

// nullifierWriter is the persisted entry of the nullifier writers allowlist.
type nullifierWriter struct {
	ID string
}

// seededWriter marks a writer added at startup, so that a later removal
// isn't undone.
type seededWriter struct {
	ID string
}

type nullifierRepositoryImpl struct {
	transactional
}

func (r *nullifierRepositoryImpl) AddNullifier(
	ctx context.Context, nullifier *domain.Nullifier,
) error {
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxInsert(tx, nullifier.Hash, *nullifier)
	} else {
		err = r.store.Insert(nullifier.Hash, *nullifier)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrNullifierAlreadyUsed
		}
		return err
	}
	return nil
}

func (r *nullifierRepositoryImpl) GetNullifier(
	ctx context.Context, hash string,
) (*domain.Nullifier, error) {
	var nullifier domain.Nullifier
	var err error

	hash = domain.NormalizeHash(hash)
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxGet(tx, hash, &nullifier)
	} else {
		err = r.store.Get(hash, &nullifier)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrNullifierNotFound
		}
		return nil, err
	}
	return &nullifier, nil
}

func (r *nullifierRepositoryImpl) IsNullified(
	ctx context.Context, hash string,
) (bool, error) {
	if _, err := r.GetNullifier(ctx, hash); err != nil {
		if err == domain.ErrNullifierNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *nullifierRepositoryImpl) AddWriter(
	ctx context.Context, writer string,
) error {
	entry := nullifierWriter{writer}
	if tx := getTx(ctx); tx != nil {
		return r.store.TxUpsert(tx, writer, entry)
	}
	return r.store.Upsert(writer, entry)
}

func (r *nullifierRepositoryImpl) RemoveWriter(
	ctx context.Context, writer string,
) error {
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxDelete(tx, writer, nullifierWriter{})
	} else {
		err = r.store.Delete(writer, nullifierWriter{})
	}
	if err != nil && err != badgerhold.ErrNotFound {
		return err
	}
	return nil
}

func (r *nullifierRepositoryImpl) GetWriters(
	ctx context.Context,
) ([]string, error) {
	var entries []nullifierWriter
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxFind(tx, &entries, nil)
	} else {
		err = r.store.Find(&entries, nil)
	}
	if err != nil {
		return nil, err
	}

	writers := make([]string, 0, len(entries))
	for _, e := range entries {
		writers = append(writers, e.ID)
	}
	sort.Strings(writers)
	return writers, nil
}

func (r *nullifierRepositoryImpl) SeedWriter(
	ctx context.Context, writer string,
) (bool, error) {
	if tx := getTx(ctx); tx != nil {
		return r.seedWriter(tx, writer)
	}

	var seeded bool
	err := r.store.Badger().Update(func(tx *badger.Txn) error {
		var err error
		seeded, err = r.seedWriter(tx, writer)
		return err
	})
	return seeded, err
}

func (r *nullifierRepositoryImpl) seedWriter(
	tx *badger.Txn, writer string,
) (bool, error) {
	var marker seededWriter
	err := r.store.TxGet(tx, writer, &marker)
	if err == nil {
		return false, nil
	}
	if err != badgerhold.ErrNotFound {
		return false, err
	}

	if err := r.store.TxInsert(tx, writer, seededWriter{writer}); err != nil {
		return false, err
	}
	if err := r.store.TxUpsert(tx, writer, nullifierWriter{writer}); err != nil {
		return false, err
	}
	return true, nil
}
