package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/zkramp/ramp-daemon/internal/config"
	"github.com/zkramp/ramp-daemon/internal/core/application"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	natspubsub "github.com/zkramp/ramp-daemon/internal/infrastructure/pubsub/nats"
	webhookpubsub "github.com/zkramp/ramp-daemon/internal/infrastructure/pubsub/webhook"
	wspubsub "github.com/zkramp/ramp-daemon/internal/infrastructure/pubsub/websocket"
	"github.com/zkramp/ramp-daemon/internal/infrastructure/zkverifier"
	httpinterface "github.com/zkramp/ramp-daemon/internal/interfaces/http"
	"github.com/zkramp/ramp-daemon/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	datadir := config.GetDatadir()
	address := fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey))
	prunerInterval := config.GetPrunerInterval()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var statsDone <-chan struct{}
	if config.GetBool(config.EnableProfilerKey) {
		statsDone = stats.EnableMemoryStatistics(
			ctx, config.GetStatsInterval(),
			filepath.Join(datadir, config.ProfilerLocation),
		)
	}

	rails, err := loadRails()
	if err != nil {
		log.WithError(err).Fatal("failed to load rail verifiers")
	}

	var (
		publishers  []ports.EventPublisher
		webhookSvc  httpinterface.WebhookService
		eventStream httpinterface.EventStream
	)
	if natsURL := config.GetString(config.NatsURLKey); natsURL != "" {
		natsSvc, err := natspubsub.NewService(
			natsURL, config.GetString(config.NatsSubjectPrefixKey),
		)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to nats server")
		}
		publishers = append(publishers, natsSvc)
	}
	if config.GetBool(config.EnableWebhooksKey) {
		webhooks, err := openWebhooks(datadir)
		if err != nil {
			log.WithError(err).Fatal("failed to open webhook store")
		}
		publishers = append(publishers, webhooks)
		webhookSvc = webhooks
	}
	if config.GetBool(config.EnableEventStreamKey) {
		hub := wspubsub.NewHub()
		publishers = append(publishers, hub)
		eventStream = hub
	}

	appConfig := &application.Config{
		DBType:                config.GetString(config.DBTypeKey),
		DBConfig:              filepath.Join(datadir, config.DbLocation),
		OwnerAddress:          config.GetString(config.OwnerAddressKey),
		EscrowAddress:         config.GetString(config.EscrowAddressKey),
		Params:                config.GetParams(),
		Rails:                 rails,
		Publishers:            publishers,
		PrunerInterval:        prunerInterval,
		PrunerPrunesPerSecond: config.GetInt(config.PrunerRateKey),
	}
	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("invalid application config")
	}

	var prunerSvc application.PrunerService
	if prunerInterval > 0 {
		prunerSvc = appConfig.PrunerService()
	}

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Address:     address,
		JWTSecret:   []byte(config.GetString(config.JWTSecretKey)),
		EscrowSvc:   appConfig.EscrowService(),
		AccountSvc:  appConfig.AccountService(),
		AdminSvc:    appConfig.AdminService(),
		PrunerSvc:   prunerSvc,
		WebhookSvc:  webhookSvc,
		EventStream: eventStream,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create http interface")
	}

	log.RegisterExitHandler(func() {
		svc.Stop()
		appConfig.PubSubService().Close()
		appConfig.RepoManager().Close()
	})

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	log.Infof("http interface is listening on %s", address)

	if prunerSvc != nil {
		prunerSvc.Start()
		log.Infof("pruning expired intents every %s", prunerInterval)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	<-sigChan

	log.Info("shutting down daemon")

	svc.Stop()
	if prunerSvc != nil {
		prunerSvc.Stop()
	}
	appConfig.PubSubService().Close()
	appConfig.RepoManager().Close()
	cancel()
	if statsDone != nil {
		<-statsDone
	}

	log.Info("daemon stopped")
}

// openWebhooks opens the webhook store of datadir. Its badger db logs
// through the standard logger, at the configured level.
func openWebhooks(datadir string) (*webhookpubsub.Service, error) {
	return webhookpubsub.NewService(
		filepath.Join(datadir, config.WebhookLocation), log.StandardLogger(),
	)
}

// loadRails reads the verifying keys of every enabled rail.
func loadRails() ([]application.RailConfig, error) {
	settings, err := config.GetRails()
	if err != nil {
		return nil, err
	}

	rails := make([]application.RailConfig, len(settings))
	g := new(errgroup.Group)
	for i, s := range settings {
		i, s := i, s
		rails[i] = application.RailConfig{
			Name:            s.Name,
			KeyHashes:       s.KeyHashes,
			SenderAddress:   s.SenderAddress,
			TimestampBuffer: s.TimestampBuffer,
		}

		load := func(path string, dst *ports.ProofVerifier) {
			if path == "" {
				return
			}
			g.Go(func() error {
				verifier, err := zkverifier.LoadVerifier(path)
				if err != nil {
					return fmt.Errorf("rail %s: %w", s.Name, err)
				}
				*dst = verifier
				log.Debugf("loaded verifying key %s", path)
				return nil
			})
		}
		load(s.SendVK, &rails[i].SendVerifier)
		load(s.SendBodyHashVK, &rails[i].SendBodyHashVerifier)
		load(s.RegistrationVK, &rails[i].RegistrationVerifier)
		load(s.RegistrationBodyHashVK, &rails[i].RegistrationBodyHashVerifier)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rails, nil
}
