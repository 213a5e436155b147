// Package httpinterface exposes the escrow, the account registry and the
// owner surface of the daemon through a JSON REST API. Callers are
// identified by the subject of an HS256 bearer token.
package httpinterface

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/application"
	webhookpubsub "github.com/zkramp/ramp-daemon/internal/infrastructure/pubsub/webhook"
	interfaces "github.com/zkramp/ramp-daemon/internal/interfaces"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// WebhookService manages the webhook subscriptions to the escrow events.
type WebhookService interface {
	Subscribe(topic, endpoint, secret string) (*webhookpubsub.Subscription, error)
	Unsubscribe(id string) error
	ListSubscriptions(topic string) ([]webhookpubsub.Subscription, error)
}

// EventStream streams the escrow events over websocket.
type EventStream interface {
	Serve(w http.ResponseWriter, r *http.Request, topics []string) error
	NumClients() int
}

type ServiceOpts struct {
	Address   string
	JWTSecret []byte

	EscrowSvc  application.EscrowService
	AccountSvc application.AccountService
	AdminSvc   application.AdminService
	// Optional.
	PrunerSvc   application.PrunerService
	WebhookSvc  WebhookService
	EventStream EventStream
}

func (o ServiceOpts) validate() error {
	if o.Address == "" {
		return fmt.Errorf("missing listening address")
	}
	if len(o.JWTSecret) <= 0 {
		return fmt.Errorf("missing jwt secret")
	}
	if o.EscrowSvc == nil {
		return fmt.Errorf("escrow app service must not be null")
	}
	if o.AccountSvc == nil {
		return fmt.Errorf("account app service must not be null")
	}
	if o.AdminSvc == nil {
		return fmt.Errorf("admin app service must not be null")
	}
	return nil
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

// NewService returns the REST interface listening on opts.Address. Both
// HTTP/1.1 and cleartext HTTP/2 clients are served.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	router, err := NewRouter(opts)
	if err != nil {
		return nil, err
	}

	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              opts.Address,
			Handler:           h2c.NewHandler(router, &http2.Server{}),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server stopped unexpectedly")
		}
	}()

	log.Infof("http interface is listening on %s", s.opts.Address)
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http server")
	}
	log.Info("http interface stopped")
}

// NewRouter returns the handler serving every route of the API.
func NewRouter(opts ServiceOpts) (*gin.Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), metricsMiddleware())

	h := &handler{opts}
	auth := authenticate(opts.JWTSecret)
	owner := ownerOnly(opts.AdminSvc.IsOwner)

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.GET("/info", h.info)
	v1.GET("/events", h.listEvents)
	v1.GET("/events/ws", h.streamEvents)
	v1.GET("/balances/:address", h.getBalances)

	deposits := v1.Group("/deposits")
	deposits.GET("", h.listDeposits)
	deposits.GET("/:id", h.getDeposit)
	deposits.GET("/:id/liquidity", h.getLiquidity)
	deposits.POST("", auth, h.createDeposit)
	deposits.POST("/:id/increase", auth, h.increaseDeposit)
	deposits.POST("/:id/withdraw", auth, h.withdrawDeposit)
	deposits.PUT("/:id/rates/:currency", auth, h.setConversionRate)

	intents := v1.Group("/intents")
	intents.GET("", h.listIntents)
	intents.GET("/:id", h.getIntent)
	intents.POST("", auth, h.signalIntent)
	intents.POST("/prune", auth, h.pruneIntents)
	intents.POST("/:id/cancel", auth, h.cancelIntent)
	intents.POST("/:id/prune", auth, h.pruneIntent)
	intents.POST("/:id/fulfill", auth, h.fulfillIntent)
	intents.POST("/:id/release", auth, h.releaseIntent)

	accounts := v1.Group("/accounts")
	accounts.GET("", h.findAccount)
	accounts.GET("/:address", h.getAccount)
	accounts.POST("/register", auth, h.register)
	accounts.POST("/denylist/:idHash", auth, h.deny)
	accounts.DELETE("/denylist/:idHash", auth, h.undeny)
	accounts.POST("/allowlist/:idHash", auth, h.allow)
	accounts.DELETE("/allowlist/:idHash", auth, h.disallow)
	accounts.PUT("/allowlist", auth, h.setAllowlistEnabled)

	admin := v1.Group("/admin", auth, owner)
	admin.GET("/params", h.getParams)
	admin.PUT("/params", h.updateParams)
	admin.POST("/fund", h.fund)
	admin.GET("/processors", h.listProcessors)
	admin.POST("/processors/:id/keyhashes/:hash", h.addKeyHash)
	admin.DELETE("/processors/:id/keyhashes/:hash", h.removeKeyHash)
	admin.PUT("/processors/:id/sender", h.setSenderAddress)
	admin.PUT("/processors/:id/buffer", h.setTimestampBuffer)
	admin.GET("/nullifier-writers", h.listNullifierWriters)
	admin.POST("/nullifier-writers/:id", h.addNullifierWriter)
	admin.DELETE("/nullifier-writers/:id", h.removeNullifierWriter)
	admin.GET("/webhooks", h.listWebhooks)
	admin.POST("/webhooks", h.addWebhook)
	admin.DELETE("/webhooks/:id", h.removeWebhook)

	return r, nil
}

type handler struct {
	ServiceOpts
}

func (h *handler) health(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if h.PrunerSvc != nil {
		status["pruner_running"] = h.PrunerSvc.IsRunning()
	}
	if h.EventStream != nil {
		status["stream_clients"] = h.EventStream.NumClients()
	}
	c.JSON(http.StatusOK, status)
}

func (h *handler) info(c *gin.Context) {
	processors, err := h.AdminSvc.ListProcessors(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	rails := make([]string, 0, len(processors))
	for _, p := range processors {
		rails = append(rails, p.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"escrow_address": h.EscrowSvc.EscrowAddress(),
		"owner":          h.AdminSvc.Owner(),
		"params":         newParamsInfo(h.EscrowSvc.Params()),
		"processors":     rails,
	})
}
