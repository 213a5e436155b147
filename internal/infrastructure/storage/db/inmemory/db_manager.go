package inmemory

import (
	"context"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/internal/storageutil/uow"
)

type RepoManager struct {
	depositRepository   *depositRepositoryImpl
	intentRepository    *intentRepositoryImpl
	accountRepository   *accountRepositoryImpl
	nullifierRepository *nullifierRepositoryImpl
	balanceRepository   *balanceRepositoryImpl
	eventRepository     *eventRepositoryImpl
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		depositRepository:   newDepositRepositoryImpl(),
		intentRepository:    newIntentRepositoryImpl(),
		accountRepository:   newAccountRepositoryImpl(),
		nullifierRepository: newNullifierRepositoryImpl(),
		balanceRepository:   newBalanceRepositoryImpl(),
		eventRepository:     newEventRepositoryImpl(),
	}
}

func (d *RepoManager) DepositRepository() domain.DepositRepository {
	return d.depositRepository
}

func (d *RepoManager) IntentRepository() domain.IntentRepository {
	return d.intentRepository
}

func (d *RepoManager) AccountRepository() domain.AccountRepository {
	return d.accountRepository
}

func (d *RepoManager) NullifierRepository() domain.NullifierRepository {
	return d.nullifierRepository
}

func (d *RepoManager) BalanceRepository() domain.BalanceRepository {
	return d.balanceRepository
}

func (d *RepoManager) EventRepository() domain.EventRepository {
	return d.eventRepository
}

func (d *RepoManager) Close() {}

// RunTransaction runs the handler in a unit of work over all the
// repositories. Read-only transactions don't need any journal.
func (d *RepoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if readOnly {
		return handler(ctx)
	}

	var res interface{}
	unit := uow.NewUnitOfWork(
		d.depositRepository,
		d.intentRepository,
		d.accountRepository,
		d.nullifierRepository,
		d.balanceRepository,
		d.eventRepository,
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
