// cmd/recommend/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"cinerent/internal/config"
	"cinerent/internal/database"
	"cinerent/internal/metrics"
	"cinerent/internal/recommend"
	"cinerent/internal/store"
	"cinerent/internal/telemetry"
)

func main() {
	cfg, err := config.Load("8084")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	shutdown, err := telemetry.Init(context.Background(), "cinerent-recommend", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialise tracing: %v", err)
	}
	defer shutdown(context.Background())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(reg)

	engine := recommend.NewEngine(store.NewPostgres(db), collector)
	handler := recommend.NewHandler(engine)

	router := chi.NewRouter()
	handler.Routes(router)
	router.Handle("/metrics", metrics.Handler(reg))

	fmt.Printf("🚀 Starting Recommendation Service on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, router))
}
