package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var servePort int

// apiServer exposes the run history and pipeline triggering over HTTP.
// execute is a field so handler tests can stub the pipeline.
type apiServer struct {
	st      store.Store
	execute func(ctx context.Context, runID string, keywords []string, skipScholar bool)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for triggering and inspecting runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		s := &apiServer{st: st}
		s.execute = func(runCtx context.Context, runID string, keywords []string, skipScholar bool) {
			executeRun(runCtx, st, runID, keywords, skipScholar)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(s),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(s *apiServer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/runs", s.handleCreateRun)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)

	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords    []string `json:"keywords"`
		SkipScholar bool     `json:"skip_scholar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	keywords := req.Keywords
	if len(keywords) == 0 {
		keywords = cfg.Keywords.Research
	}

	run, err := s.st.CreateRun(r.Context(), keywords)
	if err != nil {
		zap.L().Error("create run failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create run failed"})
		return
	}

	// The request returns immediately; the pipeline outlives it.
	go s.execute(context.WithoutCancel(r.Context()), run.ID, keywords, req.SkipScholar)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"run_id": run.ID,
		"status": string(run.Status),
	})
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Status: model.RunStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	runs, err := s.st.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.st.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}

	if r.URL.Query().Get("leads") != "true" {
		writeJSON(w, http.StatusOK, run)
		return
	}

	leads, err := s.st.GetLeads(r.Context(), run.ID)
	if err != nil {
		zap.L().Error("get leads failed", zap.String("run_id", run.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get leads failed"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Run   *model.Run   `json:"run"`
		Leads []model.Lead `json:"leads"`
	}{run, leads})
}

// executeRun drives a full pipeline pass for an already-created run record
// and records its terminal status. Errors are logged, never returned; the
// triggering request has long since been answered.
func executeRun(ctx context.Context, st store.Store, runID string, keywords []string, skipScholar bool) {
	p, exporter, err := buildPipeline(cfg, skipScholar)
	if err != nil {
		finishFailed(ctx, st, runID, err)
		return
	}

	result, err := p.Run(ctx, keywords)
	if err != nil {
		finishFailed(ctx, st, runID, err)
		return
	}

	status := model.RunStatusComplete
	if len(result.Leads) == 0 {
		status = model.RunStatusEmpty
	}

	if len(result.Leads) > 0 {
		baseName := "leads_" + time.Now().Format("20060102_150405")
		outputs, exportErr := exporter.Export(result.Leads, baseName, cfg.Export.Formats)
		result.Summary.Outputs = outputs
		if exportErr != nil {
			finishFailed(ctx, st, runID, exportErr)
			return
		}
		if err := st.SaveLeads(ctx, runID, result.Leads); err != nil {
			finishFailed(ctx, st, runID, err)
			return
		}
	}

	if err := st.FinishRun(ctx, runID, status, &result.Summary); err != nil {
		zap.L().Error("finish run failed", zap.String("run_id", runID), zap.Error(err))
		return
	}

	zap.L().Info("run complete",
		zap.String("run_id", runID),
		zap.String("status", string(status)),
		zap.Int("leads", result.Summary.Leads),
	)
}

func finishFailed(ctx context.Context, st store.Store, runID string, cause error) {
	zap.L().Error("run failed", zap.String("run_id", runID), zap.Error(cause))
	summary := &model.RunSummary{Error: cause.Error()}
	if err := st.FinishRun(ctx, runID, model.RunStatusFailed, summary); err != nil {
		zap.L().Warn("failed to record failed run", zap.String("run_id", runID), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
