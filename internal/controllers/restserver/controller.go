// Package restserver serves single-profile analysis and stored runs over
// HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/automorph/internal/log"
	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
	"github.com/chrissnell/automorph/internal/storage"
	"github.com/chrissnell/automorph/internal/storage/sqlite"
	"github.com/chrissnell/automorph/pkg/config"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// shutdownTimeout bounds the graceful drain of in-flight requests
const shutdownTimeout = 10 * time.Second

// RunStore reads stored runs. *sqlite.Store satisfies it.
type RunStore interface {
	ListRuns(ctx context.Context) ([]sqlite.RunSummary, error)
	GetRun(ctx context.Context, id uuid.UUID) (sqlite.RunSummary, []storage.Row, error)
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	Store      RunStore
	Health     *storage.HealthManager
	Params     morpho.Params
	Options    profile.Options
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller. store may be nil, in
// which case the run endpoints answer 404.
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, analysis config.AnalysisData, store RunStore, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		Store:      store,
		Params:     analysis.Params(),
		Options:    analysis.Options(),
		logger:     logger,
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultRESTPort)
		rc.Port = config.DefaultRESTPort
	}

	if (rc.Cert == "") != (rc.Key == "") {
		return nil, fmt.Errorf("rest.cert and rest.key must be set together")
	}
	ctrl.restConfig = rc

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server and shuts it down when the
// controller's context is cancelled
func (c *Controller) StartController() error {
	c.logger.Infof("starting REST server on %s", c.Server.Addr)
	c.wg.Add(2)

	go func() {
		defer c.wg.Done()

		var err error
		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			err = c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		c.logger.Info("shutting down the REST server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := c.Server.Shutdown(ctx); err != nil {
			c.logger.Errorf("REST server shutdown: %v", err)
		}
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(c.logger))

	router.HandleFunc("/healthz", c.handlers.Healthz).Methods(http.MethodGet)
	router.HandleFunc("/analyze", c.handlers.Analyze).Methods(http.MethodPost)
	router.HandleFunc("/runs", c.handlers.ListRuns).Methods(http.MethodGet)
	router.HandleFunc("/runs/{id}", c.handlers.GetRun).Methods(http.MethodGet)

	return router
}
