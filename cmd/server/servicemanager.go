package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/audit"
	"github.com/complyhub/compliance-management-api/internal/checklist"
	"github.com/complyhub/compliance-management-api/internal/compliance"
	"github.com/complyhub/compliance-management-api/internal/dashboard"
	"github.com/complyhub/compliance-management-api/internal/form"
	"github.com/complyhub/compliance-management-api/internal/permission"
	"github.com/complyhub/compliance-management-api/internal/system/cache"
	"github.com/complyhub/compliance-management-api/internal/system/config"
	"github.com/complyhub/compliance-management-api/internal/system/constants"
	"github.com/complyhub/compliance-management-api/internal/system/database"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/mailer"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
	"github.com/complyhub/compliance-management-api/internal/system/storage"
	"github.com/complyhub/compliance-management-api/internal/system/stores"
	"github.com/complyhub/compliance-management-api/internal/user"
)

// serviceDeps are the shared infrastructure handles every module is built from.
type serviceDeps struct {
	dbClient provider.DBClientInterface
	db       *database.DB
	objects  storage.ObjectStorage
	cache    cache.Cache
	locker   cache.Locker
	mailer   mailer.Client
	recorder *metrics.Recorder
}

// registerServices initializes every module under the API base path.
func registerServices(router *gin.Engine, cfg *config.Config, deps serviceDeps) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ServiceManager"))

	tx := stores.NewTransactionRunner(deps.dbClient)

	userStore := user.NewUserStore(deps.dbClient)
	complianceStore := compliance.NewComplianceStore(deps.dbClient)
	auditStore := audit.NewAuditStore(deps.dbClient)
	formStore := form.NewFormStore(deps.dbClient)
	checklistStore := checklist.NewChecklistStore(deps.dbClient)

	gate := permission.NewGate(userStore)
	api := router.Group(constants.APIBasePath)

	compliance.Initialize(api, complianceStore, tx, gate)
	logger.Info("Compliance module initialized")

	form.Initialize(api, formStore, complianceStore, auditStore, tx, gate, form.Settings{
		PassThreshold:    cfg.Scoring.PassThreshold,
		StrictValidation: cfg.Schema.StrictValidation,
	}, deps.recorder)
	logger.Info("Form module initialized")

	checklist.Initialize(api, checklistStore, complianceStore, deps.objects, tx, gate, checklist.Settings{
		PassThreshold:    cfg.Scoring.PassThreshold,
		StrictValidation: cfg.Schema.StrictValidation,
		MaxUploadBytes:   cfg.Storage.MaxUploadBytes(),
	}, deps.recorder)
	logger.Info("Checklist module initialized")

	audit.Initialize(api, auditStore, tx, gate, deps.recorder)
	logger.Info("Audit module initialized")

	user.Initialize(api, userStore, tx, gate, deps.mailer, deps.locker, deps.recorder)
	logger.Info("User module initialized")

	dashboard.Initialize(api, auditStore, complianceStore, userStore, deps.cache, gate, dashboard.Settings{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})
	logger.Info("Dashboard module initialized")

	router.GET("/metrics", gin.WrapH(deps.recorder.Handler()))
	router.GET("/health", healthHandler(deps.db))
}

func healthHandler(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
