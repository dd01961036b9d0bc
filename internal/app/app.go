package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CivicLens/internal/app/server"
	"CivicLens/internal/config"
	"CivicLens/internal/delivery/http"
	"CivicLens/internal/delivery/ws"
	"CivicLens/internal/service"
	"CivicLens/internal/service/auth"
	"CivicLens/internal/service/authority"
	"CivicLens/internal/service/category"
	"CivicLens/internal/service/moderation"
	"CivicLens/internal/service/report"
	"CivicLens/internal/service/user"
	"CivicLens/internal/storage/elastic"
	"CivicLens/internal/storage/minio_storage"
	"CivicLens/internal/storage/postgres"
	"CivicLens/pkg/logger"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	userRepo := postgres.NewUserPostgres(pg.Pool)
	reportRepo := postgres.NewReportPostgres(pg.Pool)
	flagRepo := postgres.NewFlagPostgres(pg.Pool)
	categoryRepo := postgres.NewCategoryPostgres(pg.Pool)
	authorityRepo := postgres.NewAuthorityPostgres(pg.Pool)

	minioStorage, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	imageStorage, err := minio_storage.NewImageStorage(minioStorage, cfg.Minio.Bucket, cfg.Minio.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing image bucket", err)
	}

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	searchRepo := elastic.NewReportSearchRepository(esClient, cfg.ES.Index)
	if err := searchRepo.CreateIndexIfNotExist(context.Background()); err != nil {
		log.FatalErr("error creating search index", err)
	}

	hub := ws.NewHub(log)
	go hub.Run()

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, "civiclens", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := auth.NewAuthService(log, jwtManager, userRepo, tokenRepo)
	authorityService := authority.NewAuthorityService(log, authorityRepo, userRepo)
	reportService := report.NewReportService(log, reportRepo, flagRepo, categoryRepo, authorityService.Matcher, imageStorage, searchRepo, hub)
	moderationService := moderation.NewModerationService(log, flagRepo, reportRepo, searchRepo, hub)
	categoryService := category.NewCategoryService(log, categoryRepo)
	userService := user.NewUserService(log, userRepo)

	u := service.Collection{
		AuthService:       authService,
		CategoryService:   categoryService,
		AuthorityService:  authorityService,
		ReportService:     reportService,
		ModerationService: moderationService,
		UserService:       userService,
	}

	r := http.InitRoutes(log, u, hub)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server stopped", err)
	}

	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("error on shutdown", err)
	}
}
