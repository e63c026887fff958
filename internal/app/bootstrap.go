// Package app is the composition root: manual dependency injection from
// configuration to router, orchestration only.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cloudpasture.io/maintwatch/internal/agent"
	"cloudpasture.io/maintwatch/internal/api/handlers"
	"cloudpasture.io/maintwatch/internal/azure"
	"cloudpasture.io/maintwatch/internal/config"
	"cloudpasture.io/maintwatch/internal/kb"
	"cloudpasture.io/maintwatch/internal/pkg/logger"
	"cloudpasture.io/maintwatch/internal/pkg/worker"
	"cloudpasture.io/maintwatch/internal/service"
)

// Application holds composed application dependencies.
type Application struct {
	Config *config.Config
	Router *gin.Engine
	Pools  *worker.Pools
}

// Bootstrap initializes all dependencies using manual DI. The credential is
// built once here and injected everywhere; nothing below this layer reaches
// for ambient authentication state.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		StoragePoolSize: cfg.Worker.StoragePoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	cred, err := azure.NewCredential(cfg.Azure.TenantID)
	if err != nil {
		pools.Shutdown()
		return nil, fmt.Errorf("init credential: %w", err)
	}

	resolver := service.NewResolver(azure.NewClientFactory(cred))

	var gateway handlers.QueryGateway
	if cfg.AgentConfigured() {
		client, err := agent.NewClient(cfg.Agent.ProjectEndpoint, cred, cfg.Agent.APIVersion)
		if err != nil {
			pools.Shutdown()
			return nil, fmt.Errorf("init agent client: %w", err)
		}
		executor := agent.NewExecutor(resolver, cfg.Azure.SubscriptionID, cfg.Azure.ResourceGroup)
		gateway = agent.NewGateway(client, executor, cfg.Agent.AgentID, agent.GatewayOptions{
			PollInterval:         cfg.Agent.RunPollInterval,
			RunTimeout:           cfg.Agent.RunTimeout,
			DefaultSubscription:  cfg.Azure.SubscriptionID,
			DefaultResourceGroup: cfg.Azure.ResourceGroup,
		})
	} else {
		logger.Info("agent gateway disabled: project endpoint or agent id not configured")
	}

	kbLogger, err := kb.NewResponseLogger(ctx, cfg.KnowledgeBase, pools)
	if err != nil {
		pools.Shutdown()
		return nil, fmt.Errorf("init knowledge base logger: %w", err)
	}

	server := handlers.NewServer(handlers.Deps{
		Reports:              resolver,
		Gateway:              gateway,
		KB:                   kbLogger,
		DefaultSubscription:  cfg.Azure.SubscriptionID,
		DefaultResourceGroup: cfg.Azure.ResourceGroup,
	})

	logger.Info("application bootstrapped",
		zap.Bool("agent_gateway", gateway != nil),
		zap.Bool("knowledge_base", kbLogger.Enabled()),
	)

	return &Application{
		Config: cfg,
		Router: newRouter(cfg, server),
		Pools:  pools,
	}, nil
}

// Shutdown drains background work.
func (a *Application) Shutdown() {
	a.Pools.Shutdown()
}
