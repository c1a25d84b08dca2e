package router

import (
	"github.com/gin-gonic/gin"
	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	appidentity "github.com/stockledger/backend/internal/application/identity"
	importapp "github.com/stockledger/backend/internal/application/import"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/interfaces/http/handler"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// uploadSlack covers the multipart framing and header fields around a sheet
const uploadSlack = 1 << 20

// Config holds the transport settings of the API
type Config struct {
	ServiceName    string
	Version        string
	TracingEnabled bool
	CORS           middleware.CORSConfig
	TrustedProxies []string
	MaxBodySize    int64
	ImportMaxBytes int64
}

// Dependencies are the services the API is served from
type Dependencies struct {
	Logger     *zap.Logger
	Tokens     middleware.TokenValidator
	Privileges *appidentity.PrivilegeService
	Health     handler.Pinger

	Inward    *appinv.InwardService
	Outward   *appinv.OutwardService
	Transfers *appinv.TransferService
	Query     *appinv.QueryService
	Catalog   *appcatalog.CatalogService
	Imports   *importapp.BulkImportService
}

// New builds the gin engine serving the ledger API
func New(cfg Config, deps Dependencies) (*gin.Engine, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.SpanAttributes(),
		logger.RequestLogger(log),
		middleware.Secure(),
		middleware.CORS(cfg.CORS),
	)

	r := NewRouter(engine, "v1").Register(
		NewDomainGroup("system", "").
			GET("/health", handler.NewHealthHandler(deps.Health, cfg.Version).Health),
		ledgerRoutes(cfg, deps, log),
	)
	r.Setup()
	for _, rt := range r.Routes() {
		log.Debug("route registered",
			zap.String("group", rt.Group),
			zap.String("method", rt.Method),
			zap.String("path", rt.Path),
		)
	}
	return engine, nil
}

func ledgerRoutes(cfg Config, deps Dependencies, log *zap.Logger) *DomainGroup {
	perm := middleware.NewPrivileges(deps.Privileges, log)
	jsonLimit := middleware.BodyLimit(cfg.MaxBodySize)
	uploadLimit := middleware.BodyLimit(0)
	if cfg.ImportMaxBytes > 0 {
		uploadLimit = middleware.BodyLimit(cfg.ImportMaxBytes + uploadSlack)
	}

	inventoryH := handler.NewInventoryHandler(deps.Inward, deps.Outward, deps.Query)
	importH := handler.NewImportHandler(deps.Imports, cfg.ImportMaxBytes)
	transferH := handler.NewTransferHandler(deps.Transfers)
	catalogH := handler.NewCatalogHandler(deps.Catalog)
	analyticsH := handler.NewAnalyticsHandler(deps.Query)
	roleH := handler.NewRoleHandler(deps.Privileges)

	api := NewDomainGroup("ledger", "").
		Use(middleware.JWTAuth(middleware.JWTConfig{Validator: deps.Tokens, Logger: log}))

	inv := api.Group("inventory", "/inventory")
	inv.GET("/scan", perm.Require(identity.ModuleInventory, identity.ActionView), inventoryH.Scan)
	inv.GET("/items", perm.Require(identity.ModuleInventory, identity.ActionView), inventoryH.ListItems)
	inv.GET("/items/:id", perm.Require(identity.ModuleInventory, identity.ActionView), inventoryH.GetItem)

	inv.POST("/inward", perm.Require(identity.ModuleInventoryInward, identity.ActionAdd), jsonLimit, inventoryH.CreateInward)
	inv.GET("/inward", perm.Require(identity.ModuleInventoryInward, identity.ActionView), inventoryH.ListInward)
	inv.POST("/inward/upload", perm.Require(identity.ModuleInventoryInward, identity.ActionAdd), uploadLimit, importH.UploadInward)

	inv.POST("/outward", perm.Require(identity.ModuleInventoryOutward, identity.ActionAdd), jsonLimit, inventoryH.CreateOutward)
	inv.GET("/outward", perm.Require(identity.ModuleInventoryOutward, identity.ActionView), inventoryH.ListOutward)
	inv.POST("/outward/upload", perm.Require(identity.ModuleInventoryOutward, identity.ActionAdd), uploadLimit, importH.UploadOutward)

	api.Group("transfers", "/transfers").
		POST("", perm.Require(identity.ModuleStockTransfer, identity.ActionAdd), jsonLimit, transferH.Create).
		GET("", perm.Require(identity.ModuleStockTransfer, identity.ActionView), transferH.List)

	api.Group("catalog", "/catalog").
		GET("/units", perm.Require(identity.ModuleInventory, identity.ActionView), catalogH.Units).
		GET("/snapshot", perm.Require(identity.ModuleInventory, identity.ActionView), catalogH.Snapshot)

	api.Group("analytics", "/analytics").
		GET("/low-stock", perm.Require(identity.ModuleInventory, identity.ActionView), analyticsH.LowStock)

	api.Group("roles", "/roles").
		PUT("/:id/privileges", perm.RequireAdmin(), jsonLimit, roleH.ReplacePrivileges)

	return api
}
