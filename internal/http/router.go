package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// RouterConfig agrupa los parametros de transporte del router.
type RouterConfig struct {
	AuthHeader     string
	CORSOrigin     string
	RequestTimeout time.Duration
}

// NewRouter configura el router de Gin con middlewares y rutas de la API.
func NewRouter(
	logger *zap.Logger,
	cfg RouterConfig,
	verifier TokenVerifier,
	userH *UserHandler,
	noteH *NoteHandler,
	budgetH *BudgetHandler,
	healthH *HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: tracing, logging, recovery, CORS y JSON content-type.
	r.Use(
		tracingMiddleware(otel.GetTracerProvider()),
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		corsMiddleware(cfg.CORSOrigin, cfg.AuthHeader),
		timeoutMiddleware(cfg.RequestTimeout),
		jsonContentTypeMiddleware(),
	)

	r.GET("/healthz", healthH.Health)

	gate := AuthGate(verifier, logger, cfg.AuthHeader)

	auth := r.Group("/api/auth")
	auth.POST("/createuser", userH.CreateUser)
	auth.POST("/login", userH.Login)
	auth.GET("/getuser", gate, userH.GetUser)
	auth.POST("/logout", gate, userH.Logout)

	notes := r.Group("/api/notes", gate)
	notes.GET("/fetchallnotes", noteH.List)
	notes.POST("/addnote", noteH.Create)
	notes.PUT("/updatenote/:id", noteH.Update)
	notes.DELETE("/deletenote/:id", noteH.Delete)

	budget := r.Group("/api/budget", gate)
	budget.GET("/fetchallbudgets", budgetH.List)
	budget.POST("/addbudget", budgetH.Create)
	budget.PUT("/updatebudget/:id", budgetH.Update)
	budget.DELETE("/deletebudget/:id", budgetH.Delete)
	budget.GET("/summary", budgetH.Summary)

	return r
}
