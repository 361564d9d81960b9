package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/availability"
	availHttp "github.com/nekogravitycat/meeting-scheduler-backend/internal/availability/http"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/logging"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/meeting"
	meetingHttp "github.com/nekogravitycat/meeting-scheduler-backend/internal/meeting/http"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
	notifHttp "github.com/nekogravitycat/meeting-scheduler-backend/internal/notification/http"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
	schedHttp "github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling/http"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/user"
	userHttp "github.com/nekogravitycat/meeting-scheduler-backend/internal/user/http"
)

// Config holds everything the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger
	Limiter      ratelimit.Limiter // nil disables rate limiting
	DefaultZone  *time.Location

	UserService         user.Service
	AvailabilityService availability.Service
	MeetingService      meeting.Service
	SchedulingService   scheduling.Service
	NotificationService notification.Service
	JWTManager          *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, logging, recovery, rate limiting, auth) and registers every module's routes.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - GinLogger: one structured log line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logging.GinLogger(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// sysAdminMiddleware: Further checks if the authenticated user has System Admin privileges.
	sysAdminMiddleware := RequireSystemAdmin(cfg.UserService)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	availHandler := availHttp.NewHandler(cfg.AvailabilityService, cfg.UserService)
	meetingHandler := meetingHttp.NewHandler(cfg.MeetingService, cfg.DefaultZone)
	schedHandler := schedHttp.NewHandler(cfg.SchedulingService, cfg.Logger)
	notifHandler := notifHttp.NewHandler(cfg.NotificationService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	if cfg.Limiter != nil {
		v1.Use(ratelimit.Middleware(cfg.Limiter, cfg.Logger, true))
	}
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, sysAdminMiddleware)
		availHttp.RegisterRoutes(v1, availHandler, authMiddleware)
		meetingHttp.RegisterRoutes(v1, meetingHandler, authMiddleware)
		schedHttp.RegisterRoutes(v1, schedHandler, authMiddleware)
		notifHttp.RegisterRoutes(v1, notifHandler, authMiddleware)
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
