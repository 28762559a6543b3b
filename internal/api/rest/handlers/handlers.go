package handlers

import (
	"github.com/nivobank/backoffice/internal/lifecycle"
	"github.com/nivobank/backoffice/internal/registry"
	"github.com/nivobank/backoffice/internal/repository/postgres"
	"github.com/nivobank/backoffice/internal/services"
	"github.com/nivobank/backoffice/pkg/logger"
)

// Handlers aggregates all HTTP handlers
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Request *RequestHandler
	Status  *StatusHandler
	Tenant  *TenantHandler
	Stats   *StatsHandler
}

// HealthCheckers holds all health check dependencies
type HealthCheckers struct {
	DB    HealthChecker
	Redis HealthChecker
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	log *logger.Logger,
	controller *lifecycle.Controller,
	catalog *registry.Registry,
	statusRepo *postgres.StatusRepository,
	tenantRepo *postgres.TenantRepository,
	statsRepo *postgres.StatsRepository,
	authService *services.AuthService,
	healthCheckers *HealthCheckers,
	version string,
) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(log, healthCheckers.DB, healthCheckers.Redis, catalog, version),
		Auth:    NewAuthHandler(log, authService),
		Request: NewRequestHandler(log, controller, catalog),
		Status:  NewStatusHandler(log, catalog, statusRepo),
		Tenant:  NewTenantHandler(log, tenantRepo),
		Stats:   NewStatsHandler(log, statsRepo),
	}
}
