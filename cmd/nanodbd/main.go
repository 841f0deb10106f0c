// Command nanodbd serves NanoDB over HTTP: a single JSON query endpoint
// plus health/table-listing routes, built on chi.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"nanodb/db/config"
	"nanodb/db/log"
	"nanodb/db/session"
)

func main() {
	cfg, err := config.Load("nanodb")
	if err != nil {
		fmt.Fprintln(os.Stderr, "nanodbd:", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "nanodbd:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log.Configure(logger)

	sess, err := session.Open(cfg.DataDir)
	if err != nil {
		log.L().Fatalw("opening database", "error", err)
	}
	defer sess.Close()

	h := &handler{sess: sess, logger: log.Named("http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/healthz", h.health)
	r.Get("/tables", h.listTables)
	r.Post("/query", h.query)

	log.L().Infow("listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.L().Fatalw("server exited", "error", err)
	}
}
