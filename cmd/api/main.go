package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/narengee/c4c-api/api/swagger"
	"github.com/narengee/c4c-api/internal/gemini"
	"github.com/narengee/c4c-api/internal/handler"
	"github.com/narengee/c4c-api/internal/middleware"
	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/internal/repository"
	"github.com/narengee/c4c-api/internal/service"
	"github.com/narengee/c4c-api/pkg/cache"
	"github.com/narengee/c4c-api/pkg/config"
	"github.com/narengee/c4c-api/pkg/database"
	"github.com/narengee/c4c-api/pkg/email"
	"github.com/narengee/c4c-api/pkg/jobs"
	"github.com/narengee/c4c-api/pkg/logger"
	corsmiddleware "github.com/narengee/c4c-api/pkg/middleware/cors"
	reqidmiddleware "github.com/narengee/c4c-api/pkg/middleware/requestid"
)

// @title Counsel4College API
// @version 1.0.0
// @description College admissions counseling platform: student profiles, AI college matching, application pipeline, coach portfolio and family linking.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, portfolio caching disabled", "error", err)
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer redisClient.Close()
	}

	geminiClient, err := gemini.NewGoogleClient(ctx, cfg.Gemini, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init gemini client", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	listRepo := repository.NewCollegeListRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	outbox := jobs.NewQueue("outbox", service.NewOutboxHandler(profileRepo, linkRepo, logr), jobs.QueueConfig{
		Workers:    cfg.Outbox.Workers,
		MaxRetries: cfg.Outbox.MaxRetries,
		RetryDelay: cfg.Outbox.RetryDelay,
		Logger:     logr,
	})
	outbox.Start(ctx)
	defer outbox.Stop()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, profileRepo, outbox, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "c4c-api",
		Audience:           []string{"c4c-clients"},
	})

	profileSvc := service.NewProfileService(profileRepo, validate, logr)
	recSvc := service.NewRecommendationService(profileRepo, matchRepo, geminiClient, metricsSvc, logr)
	profileSvc.SetDreamSyncer(recSvc)

	listSvc := service.NewCollegeListService(listRepo, validate, logr)

	var coachSvc *service.CoachService
	if cacheRepo != nil {
		coachSvc = service.NewCoachService(assignmentRepo, userRepo, profileRepo, matchRepo, listRepo, noteRepo, cacheRepo, cfg.Coach.PortfolioCacheTTL, logr)
	} else {
		coachSvc = service.NewCoachService(assignmentRepo, userRepo, profileRepo, matchRepo, listRepo, noteRepo, nil, cfg.Coach.PortfolioCacheTTL, logr)
	}

	chatSvc := service.NewChatService(coachSvc, matchRepo, geminiClient, metricsSvc, validate, logr)
	linkSvc := service.NewLinkService(linkRepo, userRepo, authSvc, email.NewSMTPSender(cfg.Email, logr), outbox, service.LinkConfig{
		TTL:    cfg.Invitations.TTL,
		AppURL: cfg.Invitations.AppURL,
	}, validate, logr)
	noteSvc := service.NewNoteService(noteRepo, assignmentRepo, validate, logr)
	adminSvc := service.NewAdminService(assignmentRepo, userRepo, matchRepo, listRepo, coachSvc, validate, logr)
	accessSvc := service.NewAccessService(assignmentRepo, linkRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	recHandler := handler.NewRecommendationHandler(recSvc)
	listHandler := handler.NewCollegeListHandler(listSvc, accessSvc)
	coachHandler := handler.NewCoachHandler(coachSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	linkHandler := handler.NewLinkHandler(linkSvc)
	noteHandler := handler.NewNoteHandler(noteSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	invitations := api.Group("/invitations")
	{
		invitations.GET("/validate", linkHandler.Validate)
		invitations.POST("/accept", linkHandler.Accept)
	}

	me := api.Group("/students/me", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	{
		me.GET("/profile", profileHandler.Get)
		me.PUT("/profile", profileHandler.Update)

		me.POST("/recommendations", recHandler.Generate)
		me.GET("/matches", recHandler.Matches)
		me.DELETE("/matches", recHandler.DeleteMatches)

		me.GET("/colleges", listHandler.List)
		me.POST("/colleges", listHandler.Add)
		me.GET("/colleges/stats", listHandler.Stats)
		me.PUT("/colleges/:id", listHandler.Update)
		me.DELETE("/colleges/:id", listHandler.Delete)
		me.PUT("/colleges/:id/tasks", listHandler.UpdateTasks)
		me.PATCH("/colleges/:id/move", listHandler.Move)
		me.PATCH("/colleges/:id/favorite", listHandler.ToggleFavorite)

		me.GET("/notes", noteHandler.MyNotes)
		me.POST("/notes/:id/reply", noteHandler.Reply)
	}

	students := api.Group("/students", middleware.JWT(authSvc))
	{
		students.GET("/:studentID/colleges", listHandler.ViewerList)
	}

	links := api.Group("/links", middleware.JWT(authSvc))
	{
		links.POST("/invitations", middleware.RequireRoles(models.RoleStudent), linkHandler.Invite)
		links.GET("/invitations", middleware.RequireRoles(models.RoleStudent), linkHandler.Pending)
		links.DELETE("/invitations/:id", middleware.RequireRoles(models.RoleStudent), linkHandler.Cancel)
		links.POST("/invitations/:id/resend", middleware.RequireRoles(models.RoleStudent), linkHandler.Resend)
		links.GET("/users", middleware.RequireRoles(models.RoleStudent), linkHandler.LinkedUsers)
		links.GET("/students", middleware.RequireRoles(models.RoleParent, models.RoleCoach), linkHandler.Students)
	}

	coach := api.Group("/coach", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleCoach, models.RoleSuperAdmin))
	{
		coach.GET("/students", coachHandler.Portfolio)
		if cfg.Exports.Enabled {
			coach.GET("/students/export", coachHandler.Export)
		}
		coach.GET("/students/:id", coachHandler.StudentDetail)
		coach.GET("/students/:id/profile", coachHandler.StudentProfile)
		coach.GET("/students/:id/matches", coachHandler.StudentMatches)
		coach.GET("/students/:id/applications", coachHandler.StudentApplications)
		coach.GET("/students/:id/notes", noteHandler.ListForStudent)
		coach.POST("/students/:id/notes", noteHandler.CreateForStudent)
		coach.DELETE("/notes/:id", noteHandler.Delete)
		coach.POST("/ai-chat", chatHandler.Chat)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleSuperAdmin))
	{
		admin.POST("/assignments", middleware.Audit(userRepo, "assignment.create", "assignments"), adminHandler.Assign)
		admin.POST("/assignments/bulk", middleware.Audit(userRepo, "assignment.bulk_create", "assignments"), adminHandler.BulkAssign)
		admin.DELETE("/assignments/:id", middleware.Audit(userRepo, "assignment.deactivate", "assignments"), adminHandler.Unassign)
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown error", "error", err)
	}
}
