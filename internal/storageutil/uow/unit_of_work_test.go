package uow_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/storageutil/uow"
)

type fakeTx struct {
	label       string
	commits     int
	rollbacks   int
	commitErr   error
	rollbackErr error
}

func (t *fakeTx) Commit() error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rollbacks++
	return t.rollbackErr
}

// store mimics a repository that reads through the tx found in ctx, if any.
type store struct {
	name     string
	tx       *fakeTx
	beginErr error
	opErr    error
	panicVal interface{}
	key      interface{}
	begun    int
}

func (s *store) Begin() (uow.Tx, error) {
	s.begun++
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

func (s *store) ctxKey() interface{} {
	if s.key != nil {
		return s.key
	}
	return s
}

func (s *store) load(ctx context.Context) (string, error) {
	if s.panicVal != nil {
		panic(s.panicVal)
	}
	label := s.name
	if tx, ok := ctx.Value(s.ctxKey()).(*fakeTx); ok {
		label = tx.label
	}
	return label, s.opErr
}

type sharedStore struct {
	*store
}

func (s sharedStore) ContextKey() interface{} {
	return s.key
}

func newStores() (*store, *store) {
	deposits := &store{name: "deposits", tx: &fakeTx{label: "deposits tx"}}
	intents := &store{name: "intents", tx: &fakeTx{label: "intents tx"}}
	return deposits, intents
}

func TestRun(t *testing.T) {
	deposits, intents := newStores()

	var loaded []string
	err := uow.NewUnitOfWork(deposits, intents).Run(
		context.Background(),
		func(ctx context.Context) error {
			for _, s := range []*store{deposits, intents} {
				label, err := s.load(ctx)
				if err != nil {
					return err
				}
				loaded = append(loaded, label)
			}
			return nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"deposits tx", "intents tx"}, loaded)
	require.Equal(t, 1, deposits.tx.commits)
	require.Equal(t, 1, intents.tx.commits)
	require.Zero(t, deposits.tx.rollbacks)
	require.Zero(t, intents.tx.rollbacks)
}

func TestFailingRun(t *testing.T) {
	tests := []struct {
		name              string
		setup             func(deposits, intents *store)
		expectedError     string
		depositsCommits   int
		intentsCommits    int
		depositsRollbacks int
		intentsRollbacks  int
	}{
		{
			name: "first begin fails",
			setup: func(deposits, _ *store) {
				deposits.beginErr = fmt.Errorf("deposits locked")
			},
			expectedError: "deposits locked",
		},
		{
			name: "second begin fails",
			setup: func(_, intents *store) {
				intents.beginErr = fmt.Errorf("intents locked")
			},
			expectedError:     "intents locked",
			depositsRollbacks: 1,
		},
		{
			name: "handler error",
			setup: func(deposits, _ *store) {
				deposits.opErr = fmt.Errorf("deposit not found")
			},
			expectedError:     "deposit not found",
			depositsRollbacks: 1,
			intentsRollbacks:  1,
		},
		{
			name: "first commit fails",
			setup: func(deposits, _ *store) {
				deposits.tx.commitErr = fmt.Errorf("deposits conflict")
			},
			expectedError:     "deposits conflict",
			depositsCommits:   1,
			depositsRollbacks: 1,
			intentsRollbacks:  1,
		},
		{
			name: "second commit fails",
			setup: func(_, intents *store) {
				intents.tx.commitErr = fmt.Errorf("intents conflict")
			},
			expectedError:     "intents conflict",
			depositsCommits:   1,
			intentsCommits:    1,
			depositsRollbacks: 1,
			intentsRollbacks:  1,
		},
		{
			name: "rollback fails",
			setup: func(deposits, intents *store) {
				intents.opErr = fmt.Errorf("intent expired")
				deposits.tx.rollbackErr = fmt.Errorf("rollback failed")
			},
			expectedError:     "rollback failed",
			depositsRollbacks: 1,
		},
		{
			name: "handler panics with string",
			setup: func(_, intents *store) {
				intents.panicVal = "boom"
			},
			expectedError:     "recovered: boom",
			depositsRollbacks: 1,
			intentsRollbacks:  1,
		},
		{
			name: "handler panics with error",
			setup: func(_, intents *store) {
				intents.panicVal = fmt.Errorf("boom")
			},
			expectedError:     "recovered: boom",
			depositsRollbacks: 1,
			intentsRollbacks:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deposits, intents := newStores()
			tt.setup(deposits, intents)

			err := uow.NewUnitOfWork(deposits, intents).Run(
				context.Background(),
				func(ctx context.Context) error {
					if _, err := deposits.load(ctx); err != nil {
						return err
					}
					_, err := intents.load(ctx)
					return err
				},
			)
			require.EqualError(t, err, tt.expectedError)
			require.Equal(t, tt.depositsCommits, deposits.tx.commits)
			require.Equal(t, tt.intentsCommits, intents.tx.commits)
			require.Equal(t, tt.depositsRollbacks, deposits.tx.rollbacks)
			require.Equal(t, tt.intentsRollbacks, intents.tx.rollbacks)
		})
	}
}

func TestRunSharedContextKey(t *testing.T) {
	deposits, intents := newStores()
	deposits.key, intents.key = "badger", "badger"

	var label string
	err := uow.NewUnitOfWork(sharedStore{deposits}, sharedStore{intents}).Run(
		context.Background(),
		func(ctx context.Context) error {
			var err error
			label, err = intents.load(ctx)
			return err
		},
	)
	require.NoError(t, err)
	require.Equal(t, "deposits tx", label)
	require.Equal(t, 1, deposits.begun)
	require.Zero(t, intents.begun)
	require.Equal(t, 1, deposits.tx.commits)
	require.Zero(t, intents.tx.commits)
}
