package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-records/internal/config"
	"github.com/iliyamo/school-records/internal/database"
	"github.com/iliyamo/school-records/internal/handler"
	"github.com/iliyamo/school-records/internal/queue"
	"github.com/iliyamo/school-records/internal/repository"
	"github.com/iliyamo/school-records/internal/router"
	"github.com/iliyamo/school-records/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}

	accounts := repository.NewAccountRepo(db)
	students := repository.NewStudentRepo(db)
	subjects := repository.NewSubjectRepo(db)
	results := repository.NewResultRepo(db)
	audit := repository.NewAuditRepo(db)

	provisioner := service.NewProvisioner(accounts, cfg.BcryptCost)
	ingestor := service.NewIngestor(students, subjects, results, cfg.IngestMaxRows)

	authHandler := handler.NewAuthHandler(cfg, accounts)
	accountHandler := handler.NewAccountHandler(provisioner, audit)
	adminHandler := handler.NewAdminHandler(ingestor, students, accounts, results, audit)

	// Background consumer mirrors ingest events into logs/ingest.log and
	// reconnects on its own; it never takes the server down.
	go func() {
		if err := queue.StartIngestConsumer(); err != nil {
			log.Printf("ingest consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, cfg, rdb, authHandler, accountHandler, adminHandler)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
