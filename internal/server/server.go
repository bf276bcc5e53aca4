// Package server exposes the journal over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/importer"
	"github.com/rustyeddy/tradejournal/journal"
)

type Server struct {
	store    *journal.Store
	importer *importer.Importer
	cfg      *config.Config
	log      *zap.Logger
	validate *validator.Validate

	importLoc    *time.Location
	analyticsLoc *time.Location
}

// New wires a Server. cfg must already be validated.
func New(store *journal.Store, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	importLoc, err := config.Location(cfg.Import.Timezone)
	if err != nil {
		return nil, err
	}
	analyticsLoc, err := config.Location(cfg.Analytics.Timezone)
	if err != nil {
		return nil, err
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	im := importer.New(store, importer.Options{
		Location:                     importLoc,
		DefaultCommissionPerContract: cfg.Import.DefaultCommissionPerContract,
		MaxCommissionPerContract:     cfg.Import.MaxCommissionPerContract,
	}, log.Named("import"))

	return &Server{
		store:        store,
		importer:     im,
		cfg:          cfg,
		log:          log,
		validate:     v,
		importLoc:    importLoc,
		analyticsLoc: analyticsLoc,
	}, nil
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.withUser)

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", s.listTrades)
			r.Post("/", s.createTrade)
			r.Get("/export", s.exportTrades)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getTrade)
				r.Put("/", s.updateTrade)
				r.Delete("/", s.deleteTrade)
				r.Post("/restore", s.restoreTrade)
				r.Post("/share", s.shareTrade)
				r.Delete("/share", s.unshareTrade)
				r.Get("/screenshots", s.listScreenshots)
				r.Post("/screenshots", s.addScreenshot)
			})
		})
		r.Get("/shared/{token}", s.getShared)
		r.Delete("/screenshots/{id}", s.deleteScreenshot)

		r.Get("/accounts", s.listAccounts)
		r.Post("/accounts", s.createAccount)
		r.Put("/accounts/{id}", s.updateAccount)
		r.Delete("/accounts/{id}", s.deleteAccount)

		r.Get("/instruments", s.listInstruments)
		r.Post("/instruments", s.upsertInstrument)
		r.Delete("/instruments/{symbol}", s.deleteInstrument)

		r.Post("/import/preview", s.previewImport)
		r.Post("/import", s.commitImport)
		r.Get("/import/batches", s.listBatches)
		r.Get("/import/batches/{id}", s.getBatch)
		r.Delete("/import/batches/{id}", s.deleteBatch)

		r.Get("/analytics", s.analytics)

		r.Get("/rules", s.listRules)
		r.Post("/rules", s.createRule)
		r.Get("/rules/checklist", s.checklist)
		r.Get("/rules/compliance", s.compliance)
		r.Get("/rules/violations", s.violations)
		r.Put("/rules/{id}", s.updateRule)
		r.Delete("/rules/{id}", s.deleteRule)
		r.Put("/rules/{id}/checks/{day}", s.setRuleCheck)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	timeout, err := s.cfg.Server.ParseShutdownTimeout()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received, starting graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Importer returns the importer used by the import endpoints.
func (s *Server) Importer() *importer.Importer {
	return s.importer
}
