package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/automorph/internal/controllers/restserver"
	"github.com/chrissnell/automorph/pkg/config"
	"go.uber.org/zap"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
	Len() int
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// NewControllerManager creates a controller manager with a controller for
// every enabled server in the configuration
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, c *config.ConfigData, sm *StorageManager, logger *zap.SugaredLogger) (ControllerManager, error) {
	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	if c.REST != nil {
		var store restserver.RunStore
		if sm != nil {
			store = sm.RunStore()
		}
		controller, err := restserver.NewController(ctx, wg, *c.REST, c.Analysis, store, logger.Named("rest"))
		if err != nil {
			return nil, fmt.Errorf("error creating REST controller: %v", err)
		}
		if sm != nil {
			controller.Health = sm.Health()
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	logger      *zap.SugaredLogger
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("started %d controllers", len(c.controllers))
	return nil
}

// Len returns the number of configured controllers
func (c *controllerManager) Len() int {
	return len(c.controllers)
}
