package service

import (
	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/store"
	"github.com/tacoworks/tollgate/models"
)

// Services bundles every business-logic service of the server.
type Services struct {
	AuthService    AuthService
	LedgerService  LedgerService
	FeatureService FeatureService
	SyncService    SyncService
	AppInfoService AppInfoService
}

// NewServices wires the full service layer on top of the repositories.
// The feature service composes the auth and ledger services rather than
// reaching into the repositories itself.
func NewServices(repositories *store.Repositories, cfg *config.StructuredConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) *Services {
	authService := NewAuthService(repositories.Subscription, cfg, logger)
	ledgerService := NewLedgerService(repositories.Credit, logger)

	return &Services{
		AuthService:    authService,
		LedgerService:  ledgerService,
		FeatureService: NewFeatureService(authService, ledgerService, cfg.Features, logger),
		SyncService:    NewSyncService(repositories.Sync, cfg.Sync, logger),
		AppInfoService: NewAppInfoService(buildInfo, logger),
	}
}
