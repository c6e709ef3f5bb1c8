// @title Scorecard API
// @description API for the sales KPI tracker "Scorecard"
// @BasePath /api/v1
// @schemes http
package main

import (
	"context"
	"log"
	"time"

	"github.com/stadiumfit/scorecard/internal/api"
	"github.com/stadiumfit/scorecard/internal/database"
	"github.com/stadiumfit/scorecard/internal/report"
	"github.com/stadiumfit/scorecard/internal/repository"
	"github.com/stadiumfit/scorecard/internal/service"
	"github.com/stadiumfit/scorecard/pkg/cleanup"
	"github.com/stadiumfit/scorecard/pkg/config"
	jwtservice "github.com/stadiumfit/scorecard/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	err := database.RunMigrations(dbCfg.ConnString()+"?sslmode=disable", "./migrations")
	if err != nil {
		log.Fatal("running migrations error: " + err.Error())
	}

	docsRepo := repository.NewDocumentsRepo(&dbCfg)
	identityService := service.NewIdentityService(docsRepo)
	catalogService := service.NewCatalogService(docsRepo)
	ledgerService := service.NewLedgerService(docsRepo, catalogService)

	hydrateCtx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	if err = identityService.Hydrate(hydrateCtx); err != nil {
		log.Fatal("hydrating identity store error: " + err.Error())
	}
	if err = catalogService.Hydrate(hydrateCtx); err != nil {
		log.Fatal("hydrating catalog store error: " + err.Error())
	}
	if err = ledgerService.Hydrate(hydrateCtx); err != nil {
		log.Fatal("hydrating ledger store error: " + err.Error())
	}

	reportService := report.NewService(buildTransport(cfg), cfg.GetString("EMAIL_FROM"))

	serv := api.New(&api.ServicesList{
		IdentityService: identityService,
		CatalogService:  catalogService,
		LedgerService:   ledgerService,
		ReportService:   reportService,
		JwtService:      jwtservice.New(cfg.GetString("JWT_SECRET")),
	})
	err = serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
	cleanup.CleanUp()
}

func buildTransport(cfg *config.Config) report.Transport {
	switch cfg.GetString("EMAIL_PROVIDER") {
	case "smtp":
		return report.NewSMTPTransport(
			cfg.GetString("SMTP_HOST"),
			cfg.GetInt("SMTP_PORT", 587),
			cfg.GetString("SMTP_USER"),
			cfg.GetString("SMTP_PASSWORD"),
			cfg.GetString("EMAIL_FROM"),
		)
	default:
		// Mock is the default provider; it always succeeds after a short delay
		return &report.MockTransport{Delay: time.Millisecond * 500}
	}
}
