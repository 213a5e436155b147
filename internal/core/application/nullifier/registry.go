// Package nullifier implements the registry of consumed proof identifiers.
package nullifier

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/application/pubsub"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

// Registry stores nullifiers on behalf of the allowed writers. Its writes
// join the transaction carried by the context, if any, so that a
// nullifier is consumed only together with the state change it guards.
type Registry struct {
	repoManager ports.RepoManager
	clock       ports.Clock
}

func NewRegistry(
	repoManager ports.RepoManager, clock ports.Clock,
) (*Registry, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	return &Registry{repoManager, clock}, nil
}

func (r *Registry) Consume(ctx context.Context, writer, hash string) error {
	ok, err := r.IsWriter(ctx, writer)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNullifierWriterNotAllowed
	}

	now := r.clock.Now().Unix()
	nullifier, err := domain.NewNullifier(hash, writer, now)
	if err != nil {
		return err
	}
	if err := r.repoManager.NullifierRepository().AddNullifier(
		ctx, nullifier,
	); err != nil {
		return err
	}

	event := domain.NewEvent(domain.EventNullifierConsumed, now)
	event.Data["nullifier"] = nullifier.Hash
	event.Data["writer"] = writer
	stored, err := r.repoManager.EventRepository().AddEvents(ctx, event)
	if err != nil {
		return err
	}
	pubsub.TrackEvents(ctx, stored...)

	log.Debugf("nullifier %s consumed by %s", nullifier.Hash, writer)
	return nil
}

func (r *Registry) IsNullified(ctx context.Context, hash string) (bool, error) {
	return r.repoManager.NullifierRepository().IsNullified(
		ctx, domain.NormalizeHash(hash),
	)
}

func (r *Registry) GetNullifier(
	ctx context.Context, hash string,
) (*domain.Nullifier, error) {
	return r.repoManager.NullifierRepository().GetNullifier(
		ctx, domain.NormalizeHash(hash),
	)
}

func (r *Registry) IsWriter(ctx context.Context, writer string) (bool, error) {
	writers, err := r.Writers(ctx)
	if err != nil {
		return false, err
	}
	for _, w := range writers {
		if w == writer {
			return true, nil
		}
	}
	return false, nil
}

func (r *Registry) AddWriter(ctx context.Context, writer string) error {
	if writer == "" {
		return fmt.Errorf("missing writer")
	}
	return r.repoManager.NullifierRepository().AddWriter(ctx, writer)
}

// SeedWriter allows writer the first time it's seen. Writers removed by the
// owner stay removed.
func (r *Registry) SeedWriter(ctx context.Context, writer string) error {
	if writer == "" {
		return fmt.Errorf("missing writer")
	}
	added, err := r.repoManager.NullifierRepository().SeedWriter(ctx, writer)
	if err != nil {
		return err
	}
	if added {
		log.Infof("allowed %s to consume nullifiers", writer)
	}
	return nil
}

func (r *Registry) RemoveWriter(ctx context.Context, writer string) error {
	return r.repoManager.NullifierRepository().RemoveWriter(ctx, writer)
}

func (r *Registry) Writers(ctx context.Context) ([]string, error) {
	return r.repoManager.NullifierRepository().GetWriters(ctx)
}
