package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/hostelhub/internal/config"
	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/middleware"
	"anoa.com/hostelhub/internal/observability"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/search"
	"anoa.com/hostelhub/pkg/response"
	"anoa.com/hostelhub/pkg/storage"

	attendanceHttp "anoa.com/hostelhub/internal/modules/attendance/delivery/http"
	attendanceRepo "anoa.com/hostelhub/internal/modules/attendance/repository"
	attendanceService "anoa.com/hostelhub/internal/modules/attendance/service"

	authHttp "anoa.com/hostelhub/internal/modules/auth/delivery/http"
	authService "anoa.com/hostelhub/internal/modules/auth/service"
	"anoa.com/hostelhub/internal/modules/auth/token"

	complaintHttp "anoa.com/hostelhub/internal/modules/complaint/delivery/http"
	complaintRepo "anoa.com/hostelhub/internal/modules/complaint/repository"
	complaintService "anoa.com/hostelhub/internal/modules/complaint/service"

	dashboardHttp "anoa.com/hostelhub/internal/modules/dashboard/delivery/http"
	dashboardService "anoa.com/hostelhub/internal/modules/dashboard/service"

	invoiceHttp "anoa.com/hostelhub/internal/modules/invoice/delivery/http"
	invoiceRepo "anoa.com/hostelhub/internal/modules/invoice/repository"
	invoiceService "anoa.com/hostelhub/internal/modules/invoice/service"

	messHttp "anoa.com/hostelhub/internal/modules/mess/delivery/http"
	messRepo "anoa.com/hostelhub/internal/modules/mess/repository"
	messService "anoa.com/hostelhub/internal/modules/mess/service"

	notiHttp "anoa.com/hostelhub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/hostelhub/internal/modules/notification/repository"
	notifService "anoa.com/hostelhub/internal/modules/notification/service"

	studentHttp "anoa.com/hostelhub/internal/modules/student/delivery/http"
	studentRepo "anoa.com/hostelhub/internal/modules/student/repository"
	studentService "anoa.com/hostelhub/internal/modules/student/service"

	suggestionHttp "anoa.com/hostelhub/internal/modules/suggestion/delivery/http"
	suggestionRepo "anoa.com/hostelhub/internal/modules/suggestion/repository"
	suggestionService "anoa.com/hostelhub/internal/modules/suggestion/service"

	userRepo "anoa.com/hostelhub/internal/modules/user/repository"

	wardenHttp "anoa.com/hostelhub/internal/modules/warden/delivery/http"
	wardenRepo "anoa.com/hostelhub/internal/modules/warden/repository"
	wardenService "anoa.com/hostelhub/internal/modules/warden/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	httpServer  *http.Server
}

// NewServer wires every module. redisClient may be nil; search and image
// uploads are enabled only when their settings are present.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	// unknown JSON fields are rejected at the boundary
	binding.EnableDecoderDisallowUnknownFields = true

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	health := observability.NewHealthChecker(sqlDB, redisClient)

	imageStorage := newImageStorage(cfg)
	complaintIndex := newComplaintIndex(cfg)

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	userRepository := userRepo.NewUserRepository(db)
	studentRepository := studentRepo.NewStudentRepository(db)
	wardenRepository := wardenRepo.NewWardenRepository(db)
	complaintRepository := complaintRepo.NewComplaintRepository(db)
	suggestionRepository := suggestionRepo.NewSuggestionRepository(db)
	attendanceRepository := attendanceRepo.NewAttendanceRepository(db)
	invoiceRepository := invoiceRepo.NewInvoiceRepository(db)
	messRepository := messRepo.NewMessRepository(db)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins)

	authSvc := authService.NewAuthService(userRepository, studentRepository, tokens)
	authHandler := authHttp.NewAuthHandler(authSvc)

	studentSvc := studentService.NewStudentService(studentRepository, userRepository)
	studentHandler := studentHttp.NewStudentHandler(studentSvc)

	wardenSvc := wardenService.NewWardenService(wardenRepository, userRepository)
	wardenHandler := wardenHttp.NewWardenHandler(wardenSvc)

	complaintSvc := complaintService.NewComplaintService(
		complaintRepository,
		notificationSvc,
		complaintIndex,
		imageStorage,
		redisClient,
		metrics,
		complaintService.Config{
			RateLimit:   cfg.RateLimitComplaint,
			ImageFolder: cfg.CloudinaryUploadFolder,
		},
	)
	complaintHandler := complaintHttp.NewComplaintHandler(complaintSvc)

	suggestionSvc := suggestionService.NewSuggestionService(suggestionRepository, notificationSvc, redisClient, metrics, cfg.RateLimitSuggestion)
	suggestionHandler := suggestionHttp.NewSuggestionHandler(suggestionSvc)

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepository, studentRepository, metrics)
	attendanceHandler := attendanceHttp.NewAttendanceHandler(attendanceSvc)

	invoiceSvc := invoiceService.NewInvoiceService(invoiceRepository, studentRepository, notificationSvc, metrics)
	invoiceHandler := invoiceHttp.NewInvoiceHandler(invoiceSvc)

	messSvc := messService.NewMessService(messRepository, redisClient, metrics, messService.Config{
		CacheTTL:     cfg.MenuCacheTTL,
		FeedbackRate: cfg.RateLimitFeedback,
	})
	messHandler := messHttp.NewMessHandler(messSvc)

	dashboardSvc := dashboardService.NewDashboardService(dashboardService.Repositories{
		Users:       userRepository,
		Students:    studentRepository,
		Complaints:  complaintRepository,
		Suggestions: suggestionRepository,
		Invoices:    invoiceRepository,
		Attendance:  attendanceRepository,
	})
	dashboardHandler := dashboardHttp.NewDashboardHandler(dashboardSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Middleware())

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.NoRoute(func(c *gin.Context) {
		response.Message(c, http.StatusNotFound, "route not found")
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, tokens)

	admin := authMiddleware.RequireRole(entity.RoleAdmin)
	staff := authMiddleware.RequireRole(entity.RoleAdmin, entity.RoleWarden)
	wardenOnly := authMiddleware.RequireRole(entity.RoleWarden)
	studentOnly := authMiddleware.RequireRole(entity.RoleStudent)
	anyRole := authMiddleware.Authorize(policy.RequireProfile())

	api := router.Group("/api")
	api.GET("/health", health.Handle)

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", anyRole, authHandler.Me)

		students := protected.Group("/students")
		{
			students.GET("", staff, studentHandler.GetAll)
			students.GET("/:id", anyRole, studentHandler.GetByID)
			students.POST("", admin, studentHandler.Create)
			students.PUT("/:id", admin, studentHandler.Update)
			students.DELETE("/:id", admin, studentHandler.Delete)
		}

		wardens := protected.Group("/wardens")
		{
			wardens.GET("", admin, wardenHandler.GetAll)
			wardens.GET("/:id", staff, wardenHandler.GetByID)
			wardens.POST("", admin, wardenHandler.Create)
			wardens.PUT("/:id", admin, wardenHandler.Update)
			wardens.DELETE("/:id", admin, wardenHandler.Delete)
		}

		complaints := protected.Group("/complaints")
		{
			complaints.GET("", staff, complaintHandler.GetAll)
			complaints.GET("/search", staff, complaintHandler.Search)
			complaints.GET("/my-complaints", studentOnly, complaintHandler.GetAll)
			complaints.GET("/warden", wardenOnly, complaintHandler.GetAll)
			complaints.GET("/:id", anyRole, complaintHandler.GetByID)
			complaints.POST("", studentOnly, complaintHandler.Create)
			complaints.POST("/:id/attachment", studentOnly, complaintHandler.AttachImage)
			complaints.PUT("/:id/status", staff, complaintHandler.UpdateStatus)
			complaints.PUT("/:id/resolve", staff, complaintHandler.Resolve)
			complaints.DELETE("/:id", authMiddleware.RequireRole(entity.RoleStudent, entity.RoleAdmin), complaintHandler.Delete)
		}

		suggestions := protected.Group("/suggestions")
		{
			suggestions.GET("", staff, suggestionHandler.GetAll)
			suggestions.GET("/my-suggestions", studentOnly, suggestionHandler.GetAll)
			suggestions.GET("/warden", wardenOnly, suggestionHandler.GetOpen)
			suggestions.GET("/count", wardenOnly, suggestionHandler.Count)
			suggestions.GET("/:id", anyRole, suggestionHandler.GetByID)
			suggestions.POST("", studentOnly, suggestionHandler.Create)
			suggestions.POST("/:id/comments", anyRole, suggestionHandler.AddComment)
			suggestions.POST("/:id/respond", staff, suggestionHandler.Respond)
			suggestions.PUT("/:id/status", staff, suggestionHandler.UpdateStatus)
			suggestions.DELETE("/:id", authMiddleware.RequireRole(entity.RoleStudent, entity.RoleAdmin), suggestionHandler.Delete)
		}

		attendance := protected.Group("/attendance")
		{
			attendance.GET("", staff, attendanceHandler.GetAll)
			attendance.GET("/records/:studentId", anyRole, attendanceHandler.GetStudentRecords)
			attendance.GET("/my-attendance", studentOnly, attendanceHandler.GetMine)
			attendance.POST("/mark", staff, attendanceHandler.Mark)
			attendance.POST("/bulk-mark", staff, attendanceHandler.BulkMark)
			attendance.GET("/stats", staff, attendanceHandler.Stats)
		}

		invoices := protected.Group("/invoices")
		{
			invoices.GET("", staff, invoiceHandler.GetAll)
			invoices.GET("/student/:studentId", anyRole, invoiceHandler.GetByStudent)
			invoices.GET("/my-invoices", studentOnly, invoiceHandler.GetMine)
			invoices.GET("/:id", anyRole, invoiceHandler.GetByID)
			invoices.POST("", admin, invoiceHandler.Create)
			invoices.PUT("/:id/status", admin, invoiceHandler.UpdateStatus)
			invoices.POST("/:id/pay", studentOnly, invoiceHandler.Pay)
		}

		mess := protected.Group("/mess")
		{
			mess.GET("/menu", anyRole, messHandler.GetMenu)
			mess.PUT("/menu/:day", staff, messHandler.UpdateDay)
			mess.PUT("/menu", staff, messHandler.UpdateMenu)
			mess.POST("/feedback", studentOnly, messHandler.CreateFeedback)
			mess.GET("/feedback", staff, messHandler.GetFeedback)
			mess.GET("/feedback/my", studentOnly, messHandler.GetMyFeedback)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/admin/stats", admin, dashboardHandler.AdminStats)
			dashboard.GET("/warden/stats", wardenOnly, dashboardHandler.WardenStats)
			dashboard.GET("/student/stats", studentOnly, dashboardHandler.StudentStats)
		}

		// Notification routes
		notifications := protected.Group("/notifications", anyRole)
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
			notifications.GET("/ws", notificationHandler.HandleWebSocket)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func newImageStorage(cfg *config.Config) storage.ImageStorage {
	if cfg.CloudinaryCloudName == "" {
		logrus.Info("cloudinary not configured, complaint images disabled")
		return nil
	}
	images, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		logrus.WithError(err).Warn("failed to initialize cloudinary storage, complaint images disabled")
		return nil
	}
	return images
}

func newComplaintIndex(cfg *config.Config) search.ComplaintIndex {
	meiliHost := cfg.MeiliSearchHost
	if meiliHost == "" {
		logrus.Info("meilisearch not configured, complaint search uses the database")
		return nil
	}
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	client := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return search.NewComplaintIndex(client)
}
