package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/internal/storageutil/uow"
)

const txKey = "tx"

type repoManager struct {
	store *badgerhold.Store

	depositRepository   *depositRepositoryImpl
	intentRepository    *intentRepositoryImpl
	accountRepository   *accountRepositoryImpl
	nullifierRepository *nullifierRepositoryImpl
	balanceRepository   *balanceRepositoryImpl
	eventRepository     *eventRepositoryImpl

	gcTicker *time.Ticker
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. An empty dir makes the
// store run in memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "escrow")
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening escrow db: %w", err)
	}

	repoManager := &repoManager{
		store:               store,
		depositRepository:   &depositRepositoryImpl{transactional{store}},
		intentRepository:    &intentRepositoryImpl{transactional{store}},
		accountRepository:   &accountRepositoryImpl{transactional{store}},
		nullifierRepository: &nullifierRepositoryImpl{transactional{store}},
		balanceRepository:   &balanceRepositoryImpl{transactional{store}},
		eventRepository:     &eventRepositoryImpl{transactional{store}},
	}

	if len(dbDir) > 0 {
		repoManager.gcTicker = time.NewTicker(30 * time.Minute)
		go repoManager.runValueLogGC()
	}

	return repoManager, nil
}

func (r *repoManager) DepositRepository() domain.DepositRepository {
	return r.depositRepository
}

func (r *repoManager) IntentRepository() domain.IntentRepository {
	return r.intentRepository
}

func (r *repoManager) AccountRepository() domain.AccountRepository {
	return r.accountRepository
}

func (r *repoManager) NullifierRepository() domain.NullifierRepository {
	return r.nullifierRepository
}

func (r *repoManager) BalanceRepository() domain.BalanceRepository {
	return r.balanceRepository
}

func (r *repoManager) EventRepository() domain.EventRepository {
	return r.eventRepository
}

func (r *repoManager) Close() {
	if r.gcTicker != nil {
		r.gcTicker.Stop()
	}
	r.store.Close()
}

// RunTransaction runs the given handler in a single badger transaction
// shared by all the repositories through the context.
func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if readOnly {
		txn := r.store.Badger().NewTransaction(false)
		defer txn.Discard()
		return handler(context.WithValue(ctx, txKey, &transaction{txn}))
	}

	var res interface{}
	unit := uow.NewUnitOfWork(
		r.depositRepository,
		r.intentRepository,
		r.accountRepository,
		r.nullifierRepository,
		r.balanceRepository,
		r.eventRepository,
	)
	if err := unit.Run(ctx, func(ctx context.Context) error {
		var err error
		res, err = handler(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repoManager) runValueLogGC() {
	for range r.gcTicker.C {
		if err := r.store.Badger().RunValueLogGC(0.5); err != nil &&
			err != badger.ErrNoRewrite {
			log.WithError(err).Warn("value log gc")
		}
	}
}

// transaction wraps a badger transaction to make it part of a unit of work.
type transaction struct {
	*badger.Txn
}

func (t *transaction) Rollback() error {
	t.Discard()
	return nil
}

// transactional is embedded by all repositories. They all share the same
// context key and therefore the same badger transaction.
type transactional struct {
	store *badgerhold.Store
}

func (t transactional) Begin() (uow.Tx, error) {
	return &transaction{t.store.Badger().NewTransaction(true)}, nil
}

func (t transactional) ContextKey() interface{} {
	return txKey
}

func getTx(ctx context.Context) *badger.Txn {
	if tx, ok := ctx.Value(txKey).(*transaction); ok {
		return tx.Txn
	}
	return nil
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
