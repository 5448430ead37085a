package bootstrap

import (
	"github.com/7pairs/twingo2/internal/config"
	"github.com/7pairs/twingo2/internal/handlers"
	"github.com/7pairs/twingo2/internal/metrics"
	"github.com/7pairs/twingo2/internal/provider"
	"github.com/7pairs/twingo2/internal/services"
)

// handlerSet holds all HTTP handlers and required services
type handlerSet struct {
	login          *handlers.LoginHandler
	pages          *handlers.PageHandler
	accountService *services.AccountService
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	p provider.Client,
	accountService *services.AccountService,
	auditService *services.AuditService,
	prometheusMetrics metrics.Recorder,
) handlerSet {
	return handlerSet{
		login:          handlers.NewLoginHandler(p, accountService, auditService, cfg, prometheusMetrics),
		pages:          handlers.NewPageHandler(accountService),
		accountService: accountService,
	}
}
