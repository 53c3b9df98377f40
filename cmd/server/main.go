package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/zeremonos/waste-collection/internal/config"
	"github.com/zeremonos/waste-collection/internal/database"
	"github.com/zeremonos/waste-collection/internal/directory"
	"github.com/zeremonos/waste-collection/internal/handler"
	"github.com/zeremonos/waste-collection/internal/middleware"
	"github.com/zeremonos/waste-collection/internal/queue"
	"github.com/zeremonos/waste-collection/internal/repository"
	"github.com/zeremonos/waste-collection/internal/router"
	"github.com/zeremonos/waste-collection/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := repository.InitSchema(db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response caching disabled")
	}

	store := repository.NewStore(db)
	publisher := queue.NewPublisher("")
	svc := service.NewRequestService(store, publisher, cfg.DailyRequestLimit, cfg.StorageTimeout)
	dir := directory.NewClient(cfg.GeoAPIBaseURL, rdb, cfg.MunicipalityCacheTTL)

	// The audit consumer tails the request.audit queue into the audit
	// log file.  It reconnects on its own, so a broker outage only
	// delays the file, never the API.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterCitizen(e, handler.NewCitizenHandler(svc))
	router.RegisterStaff(e, handler.NewStaffHandler(svc))
	router.RegisterMunicipalities(e, handler.NewMunicipalityHandler(dir),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
