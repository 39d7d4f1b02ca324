package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/mcoot/spendboard/internal/api/apierr"
	"github.com/mcoot/spendboard/internal/api/handler"
	"github.com/mcoot/spendboard/internal/api/middleware"
	"github.com/mcoot/spendboard/internal/services/auth"
	"github.com/mcoot/spendboard/internal/services/catalog"
	"github.com/mcoot/spendboard/internal/services/purchase"
	"github.com/mcoot/spendboard/internal/services/ranking"
	"github.com/mcoot/spendboard/internal/services/reconcile"
	"github.com/mcoot/spendboard/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	Storage          storage.Storage
	StorageKind      string
	Degraded         bool
	AllowedOrigins   []string
	AuthService      *auth.Service
	RankingService   *ranking.Service
	PurchaseService  *purchase.Service
	CatalogService   *catalog.Service
	ReconcileService *reconcile.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.StorageKind, cfg.Degraded)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.RankingService)
	purchaseHandler := handler.NewPurchaseHandler(cfg.PurchaseService)
	catalogHandler := handler.NewCatalogHandler(cfg.CatalogService)
	syncHandler := handler.NewSyncHandler(cfg.ReconcileService, cfg.RankingService, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	triggerMiddleware := middleware.Trigger(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public routes
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/trophies", leaderboardHandler.Trophies).Methods(http.MethodGet)
	api.HandleFunc("/pending", purchaseHandler.ListPending).Methods(http.MethodGet)
	api.HandleFunc("/pending", purchaseHandler.Suggest).Methods(http.MethodPost)
	api.HandleFunc("/catalog/search", catalogHandler.Search).Methods(http.MethodGet)

	// Admin routes
	purchases := api.PathPrefix("/purchases").Subrouter()
	purchases.Use(authMiddleware)
	purchases.HandleFunc("", purchaseHandler.Add).Methods(http.MethodPost)
	purchases.HandleFunc("/{id}", purchaseHandler.UpdatePrice).Methods(http.MethodPatch)
	purchases.HandleFunc("/{id}", purchaseHandler.Delete).Methods(http.MethodDelete)

	pending := api.PathPrefix("/pending/{id}").Subrouter()
	pending.Use(authMiddleware)
	pending.HandleFunc("/approve", purchaseHandler.Approve).Methods(http.MethodPost)
	pending.HandleFunc("", purchaseHandler.Reject).Methods(http.MethodDelete)

	// Trigger routes (admin session or trigger secret)
	triggers := api.NewRoute().Subrouter()
	triggers.Use(triggerMiddleware)
	triggers.HandleFunc("/sync/libraries", syncHandler.Libraries).Methods(http.MethodPost)
	triggers.HandleFunc("/sync/returns", syncHandler.Returns).Methods(http.MethodPost)
	triggers.HandleFunc("/months/close", syncHandler.CloseMonth).Methods(http.MethodPost)

	// CORS wraps the router so preflight requests never reach method matching
	return cors.Handler(corsOptions(cfg.AllowedOrigins))(r)
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}
