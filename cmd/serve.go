package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/inbox-crm/internal/crm"
	"github.com/sells-group/inbox-crm/internal/extract"
	"github.com/sells-group/inbox-crm/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initCRM(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.CRM),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			// The signal context is already cancelled; give in-flight
			// requests their own window to drain.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the HTTP API on top of the CRM service.
func newRouter(svc *crm.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/emails", func(w http.ResponseWriter, r *http.Request) {
		emails, err := svc.Inbox(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, emails)
	})

	r.Get("/emails/{id}", func(w http.ResponseWriter, r *http.Request) {
		cx, err := svc.OpenEmail(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, crm.ErrEmailNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, cx)
	})

	r.Post("/emails/{id}/analyze", func(w http.ResponseWriter, r *http.Request) {
		suggestion, err := svc.RequestAnalysis(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, crm.ErrEmailNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, extract.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, err)
		case err != nil:
			writeError(w, http.StatusInternalServerError, err)
		default:
			writeJSON(w, http.StatusOK, suggestion)
		}
	})

	r.Get("/suggestion", func(w http.ResponseWriter, r *http.Request) {
		suggestion, emailID := svc.Suggestion()
		if suggestion == nil {
			writeError(w, http.StatusNotFound, crm.ErrNoSuggestion)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"email_id":   emailID,
			"suggestion": suggestion,
		})
	})

	r.Post("/suggestion/accept", func(w http.ResponseWriter, r *http.Request) {
		contact, deal, err := svc.AcceptSuggestion(r.Context())
		switch {
		case errors.Is(err, crm.ErrNoSuggestion):
			writeError(w, http.StatusConflict, err)
		case err != nil:
			writeError(w, http.StatusInternalServerError, err)
		default:
			writeJSON(w, http.StatusCreated, map[string]any{
				"contact": contact,
				"deal":    deal,
			})
		}
	})

	r.Post("/contacts", func(w http.ResponseWriter, r *http.Request) {
		var c model.Contact
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}
		if c.Name == "" || c.Email == "" {
			writeError(w, http.StatusBadRequest, eris.New("name and email are required"))
			return
		}
		created, err := svc.AddContact(r.Context(), c)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})

	r.Post("/deals", func(w http.ResponseWriter, r *http.Request) {
		var d model.Deal
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}
		if d.Title == "" {
			writeError(w, http.StatusBadRequest, eris.New("title is required"))
			return
		}
		if d.Stage != "" {
			if _, ok := model.ParseStage(string(d.Stage)); !ok {
				writeError(w, http.StatusBadRequest, eris.New("unknown stage: "+string(d.Stage)))
				return
			}
		}
		created, err := svc.AddDeal(r.Context(), d)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})

	r.Post("/deals/{id}/move", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stage string `json:"stage"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}
		stage, ok := model.ParseStage(req.Stage)
		if !ok {
			writeError(w, http.StatusBadRequest, eris.New("unknown stage: "+req.Stage))
			return
		}
		if err := svc.MoveDeal(r.Context(), chi.URLParam(r, "id"), stage); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		// Unknown ids are a silent no-op, matching drag-and-drop
		// semantics where a stale card id should not error.
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/pipeline", func(w http.ResponseWriter, r *http.Request) {
		metrics, board, err := svc.Pipeline(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"stages": metrics,
			"board":  board,
		})
	})

	r.Get("/analytics", func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Analytics(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
