package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/api"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/meeting"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling/store"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction  bool
	ProdOrigins   string
	DBPool        *pgxpool.Pool
	JWTSecret     string
	JWTTTL        time.Duration
	PasswordCost  int
	Logger        *zap.Logger
	DefaultZone   *time.Location
	BusinessHours scheduling.BusinessHours
	Limiter       ratelimit.Limiter      // optional
	Publisher     notification.Publisher // defaults to NopPublisher
	Reminders     meeting.ReminderConfig
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router            *gin.Engine
	JWTManager        *auth.JWTManager
	SchedulingService scheduling.Service
	ReminderWorker    *meeting.ReminderWorker
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DefaultZone == nil {
		cfg.DefaultZone = time.UTC
	}
	if cfg.Publisher == nil {
		cfg.Publisher = notification.NopPublisher{}
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.PasswordCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, cfg.DefaultZone.String(), cfg.Logger)

	// Availability Module
	availRepo := availability.NewPgxRepository(cfg.DBPool)
	availService := availability.NewService(availRepo)

	// Scheduling engine over the meeting, availability and user repositories
	meetingRepo := meeting.NewPgxRepository(cfg.DBPool)
	people := store.New(meetingRepo, availRepo, userRepo, cfg.DefaultZone)
	schedService := scheduling.NewService(
		people,
		scheduling.Options{BusinessHours: cfg.BusinessHours, DefaultLocation: cfg.DefaultZone},
	)

	// Notification Module
	notifRepo := notification.NewPgxRepository(cfg.DBPool)
	notifService := notification.NewService(notifRepo)
	dispatcher := notification.NewDispatcher(notifService, people, cfg.Publisher, cfg.Logger)

	// Meeting Module
	meetingService := meeting.NewService(meetingRepo, schedService, dispatcher, cfg.Logger)
	reminders := meeting.NewReminderWorker(meetingRepo, dispatcher, notifService, cfg.Logger, cfg.Reminders)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              cfg.Logger,
		Limiter:             cfg.Limiter,
		DefaultZone:         cfg.DefaultZone,
		UserService:         userService,
		AvailabilityService: availService,
		MeetingService:      meetingService,
		SchedulingService:   schedService,
		NotificationService: notifService,
		JWTManager:          jwtManager,
	})

	return &Container{
		Router:            router,
		JWTManager:        jwtManager,
		SchedulingService: schedService,
		ReminderWorker:    reminders,
	}
}
