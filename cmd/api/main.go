package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yourusername/quizmaster-api/internal/config"
	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/handler"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	pgRepo "github.com/yourusername/quizmaster-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quizmaster-api/internal/repository/redis"
	"github.com/yourusername/quizmaster-api/internal/service"
	"github.com/yourusername/quizmaster-api/pkg/auth"
	"github.com/yourusername/quizmaster-api/pkg/database"
)

func main() {
	// .env нужен только для локальной разработки
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), os.Getenv("DB_DEBUG") == "true")
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	submissionStore := pgRepo.NewSubmissionStore(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	tokenBlacklist, err := redisRepo.NewTokenBlacklist(redisClient)
	if err != nil {
		log.Printf("Failed to initialize TokenBlacklist: %v", err)
		os.Exit(1)
	}

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cfg.JWT.Issuer, tokenBlacklist)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Уведомления о результатах: без ключа Resend письма просто логируются
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		emailService = resendService
	}

	// Инициализируем сервисы
	dashboardService := service.NewDashboardService(quizRepo, attemptRepo, cacheRepo,
		time.Duration(cfg.Cache.DashboardTTLSec)*time.Second)
	authService := service.NewAuthService(userRepo, jwtService, cfg.Auth.MinPasswordLength)
	profileService := service.NewProfileService(userRepo)
	quizService := service.NewQuizService(quizRepo, questionRepo, dashboardService)
	attemptService := service.NewAttemptService(quizRepo, questionRepo, attemptRepo, dashboardService)
	submissionService := service.NewSubmissionService(submissionStore, attemptRepo, userRepo, dashboardService, emailService)

	if err := handler.RegisterValidators(); err != nil {
		log.Printf("Failed to register validators: %v", err)
		os.Exit(1)
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)
	quizHandler := handler.NewQuizHandler(quizService, dashboardService)
	attemptHandler := handler.NewAttemptHandler(attemptService, submissionService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	router := gin.Default()

	// В production не доверяем прокси-заголовкам (защита от IP spoofing в rate limiter)
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(middleware.RequestID())

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/teacher/register", authHandler.RegisterTeacher)
			authGroup.POST("/student/register", authHandler.RegisterStudent)
			authGroup.POST("/login", rateLimiter.Limit(middleware.LoginRateLimitConfig(cfg.Auth.LoginRateLimit)), authHandler.Login)
			authGroup.POST("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
		}

		// Маршруты для любого аутентифицированного пользователя
		authed := api.Group("")
		authed.Use(authMiddleware.RequireAuth())
		{
			authed.GET("/profile", profileHandler.GetProfile)
			authed.PUT("/profile", profileHandler.UpdateProfile)
			authed.GET("/quizzes", quizHandler.ListQuizzes)
		}

		teacher := api.Group("/teacher")
		teacher.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(entity.RoleTeacher))
		{
			teacher.GET("/dashboard", dashboardHandler.TeacherDashboard)
			teacher.POST("/quizzes", quizHandler.CreateQuiz)
			teacher.GET("/quizzes", quizHandler.ListOwnQuizzes)

			quizWithID := teacher.Group("/quizzes/:id")
			quizWithID.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				quizWithID.GET("", quizHandler.GetOwnQuiz)
				quizWithID.PUT("", quizHandler.UpdateQuiz)
				quizWithID.DELETE("", quizHandler.DeleteQuiz)
				quizWithID.GET("/questions", quizHandler.ListQuestions)
				quizWithID.POST("/questions", quizHandler.AddQuestions)
				quizWithID.GET("/results", quizHandler.GetQuizResults)
				quizWithID.GET("/results/export", quizHandler.ExportQuizResults)
			}

			questionWithID := teacher.Group("/questions/:id")
			questionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
			{
				questionWithID.DELETE("", quizHandler.DeleteQuestion)
				questionWithID.PUT("/options", quizHandler.ReplaceOptions)
			}

			teacher.GET("/attempts/:id", middleware.ExtractUintParam("id", "attemptID"), attemptHandler.GetAttemptDetails)
		}

		submitLimit := rateLimiter.LimitByUser(middleware.SubmitRateLimitConfig(cfg.Auth.SubmitRateLimit))

		student := api.Group("/student")
		student.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(entity.RoleStudent))
		{
			student.GET("/dashboard", dashboardHandler.StudentDashboard)

			quizWithID := student.Group("/quizzes/:id")
			quizWithID.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				quizWithID.POST("/take", attemptHandler.TakeQuiz)
				quizWithID.POST("/submit", submitLimit, attemptHandler.SubmitQuiz)
			}

			attemptWithID := student.Group("/attempts/:id")
			attemptWithID.Use(middleware.ExtractUintParam("id", "attemptID"))
			{
				attemptWithID.POST("/submit", submitLimit, attemptHandler.SubmitAttempt)
				attemptWithID.GET("/result", attemptHandler.GetResult)
			}
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
