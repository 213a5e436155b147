package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/application/nullifier"
	"github.com/zkramp/ramp-daemon/internal/core/application/processor"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/internal/infrastructure/processor/emailproof"
	dbbadger "github.com/zkramp/ramp-daemon/internal/infrastructure/storage/db/badger"
	"github.com/zkramp/ramp-daemon/internal/infrastructure/storage/db/inmemory"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

// RailConfig enables a payment rail with the verifiers of its circuits.
// Body hash verifiers are required only by rails that split the body
// hashing over a dedicated circuit.
type RailConfig struct {
	Name                         string
	KeyHashes                    []string
	SenderAddress                string
	TimestampBuffer              int64
	SendVerifier                 ports.ProofVerifier
	SendBodyHashVerifier         ports.ProofVerifier
	RegistrationVerifier         ports.ProofVerifier
	RegistrationBodyHashVerifier ports.ProofVerifier
}

type Config struct {
	DBType   string
	DBConfig interface{}

	OwnerAddress  string
	EscrowAddress string
	Params        domain.Params
	Rails         []RailConfig
	Publishers    []ports.EventPublisher

	PrunerInterval        time.Duration
	PrunerPrunesPerSecond int

	Clock ports.Clock

	lock       *sync.Mutex
	repo       ports.RepoManager
	processors *processor.Registry
	nullifiers *nullifier.Registry
	pubsub     PubSubService
	escrow     EscrowService
	account    AccountService
	admin      AdminService
	pruner     PrunerService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return ErrUnknownDBType
	}
	if !domain.IsValidAddress(c.OwnerAddress) {
		return ErrMissingOwner
	}
	if !domain.IsValidAddress(c.EscrowAddress) {
		return ErrMissingEscrowAddress
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	for _, r := range c.Rails {
		if _, err := emailproof.RailByName(r.Name); err != nil {
			return err
		}
		if r.SendVerifier == nil || r.RegistrationVerifier == nil {
			return fmt.Errorf("%w: %s", ErrMissingRailVerifier, r.Name)
		}
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.processorRegistry(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) PubSubService() PubSubService {
	return c.pubsubService()
}

func (c *Config) EscrowService() EscrowService {
	svc, _ := c.escrowService()
	return svc
}

func (c *Config) AccountService() AccountService {
	svc, _ := c.accountService()
	return svc
}

func (c *Config) AdminService() AdminService {
	svc, _ := c.adminService()
	return svc
}

func (c *Config) PrunerService() PrunerService {
	svc, _ := c.prunerService()
	return svc
}

func (c *Config) writeLock() *sync.Mutex {
	if c.lock == nil {
		c.lock = &sync.Mutex{}
	}
	return c.lock
}

func (c *Config) clock() ports.Clock {
	if c.Clock == nil {
		c.Clock = systemClock{}
	}
	return c.Clock
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir := c.DBConfig.(string)
			repoManager, err := dbbadger.NewRepoManager(datadir, log.StandardLogger())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		case DBInMemory:
			c.repo = inmemory.NewRepoManager()
		default:
			return nil, ErrUnknownDBType
		}
	}
	return c.repo, nil
}

func (c *Config) nullifierRegistry() (*nullifier.Registry, error) {
	if c.nullifiers == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		nullifiers, err := nullifier.NewRegistry(repo, c.clock())
		if err != nil {
			return nil, err
		}
		c.nullifiers = nullifiers
	}
	return c.nullifiers, nil
}

// processorRegistry makes the send and registration processors of every
// enabled rail, allowing them to consume nullifiers.
func (c *Config) processorRegistry() (*processor.Registry, error) {
	if c.processors != nil {
		return c.processors, nil
	}

	nullifiers, err := c.nullifierRegistry()
	if err != nil {
		return nil, err
	}

	registry := processor.NewRegistry()
	for _, r := range c.Rails {
		rail, err := emailproof.RailByName(r.Name)
		if err != nil {
			return nil, err
		}
		keyHashes, err := emailproof.NewKeyHashAdapter(r.KeyHashes...)
		if err != nil {
			return nil, fmt.Errorf("rail %s: %w", r.Name, err)
		}
		opts := emailproof.Opts{
			KeyHashes:       keyHashes,
			Nullifiers:      nullifiers,
			SenderAddress:   r.SenderAddress,
			TimestampBuffer: r.TimestampBuffer,
		}

		sendOpts := opts
		sendOpts.MainVerifier = r.SendVerifier
		sendOpts.BodyHashVerifier = r.SendBodyHashVerifier
		send, err := rail.NewSendProcessor(sendOpts)
		if err != nil {
			return nil, fmt.Errorf("rail %s: send processor: %w", r.Name, err)
		}

		registrationOpts := opts
		registrationOpts.MainVerifier = r.RegistrationVerifier
		registrationOpts.BodyHashVerifier = r.RegistrationBodyHashVerifier
		registration, err := rail.NewRegistrationProcessor(registrationOpts)
		if err != nil {
			return nil, fmt.Errorf(
				"rail %s: registration processor: %w", r.Name, err,
			)
		}

		if err := registry.AddPaymentProcessor(send); err != nil {
			return nil, err
		}
		if err := registry.AddRegistrationProcessor(registration); err != nil {
			return nil, err
		}

		if err := nullifiers.SeedWriter(context.Background(), send.ID()); err != nil {
			return nil, err
		}
		log.Debugf("enabled rail %s", rail.Name)
	}

	if len(c.Rails) <= 0 {
		log.Warn("no payment rail enabled, deposits can't be created")
	}

	c.processors = registry
	return c.processors, nil
}

func (c *Config) pubsubService() PubSubService {
	if c.pubsub == nil {
		c.pubsub = NewPubSubService(c.Publishers...)
	}
	return c.pubsub
}

func (c *Config) escrowService() (EscrowService, error) {
	if c.escrow == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		processors, err := c.processorRegistry()
		if err != nil {
			return nil, err
		}
		escrow, err := NewEscrowService(
			repo, processors, c.pubsubService(), c.clock(), c.writeLock(),
			c.EscrowAddress, c.Params,
		)
		if err != nil {
			return nil, err
		}
		c.escrow = escrow
	}
	return c.escrow, nil
}

func (c *Config) accountService() (AccountService, error) {
	if c.account == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		processors, err := c.processorRegistry()
		if err != nil {
			return nil, err
		}
		account, err := NewAccountService(
			repo, processors, c.pubsubService(), c.clock(), c.writeLock(),
		)
		if err != nil {
			return nil, err
		}
		c.account = account
	}
	return c.account, nil
}

func (c *Config) adminService() (AdminService, error) {
	if c.admin == nil {
		escrow, err := c.escrowService()
		if err != nil {
			return nil, err
		}
		repo, _ := c.repoManager()
		processors, _ := c.processorRegistry()
		nullifiers, _ := c.nullifierRegistry()
		admin, err := NewAdminService(
			c.OwnerAddress, escrow, processors, nullifiers, repo,
			c.pubsubService(), c.clock(), c.writeLock(),
		)
		if err != nil {
			return nil, err
		}
		c.admin = admin
	}
	return c.admin, nil
}

func (c *Config) prunerService() (PrunerService, error) {
	if c.pruner == nil {
		escrow, err := c.escrowService()
		if err != nil {
			return nil, err
		}
		pruner, err := NewPrunerService(
			escrow, c.OwnerAddress, c.PrunerInterval, c.PrunerPrunesPerSecond,
		)
		if err != nil {
			return nil, err
		}
		c.pruner = pruner
	}
	return c.pruner, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
