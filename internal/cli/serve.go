package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/genemap/genemap/pkg/store"
)

// newServeCmd creates the serve command exposing the aggregated data as a
// JSON API for the interactive viewer.
func newServeCmd() *cobra.Command {
	var redisAddr, listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the aggregated data as a JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s := store.NewRedis(redisAddr)
			defer s.Close()
			if err := s.Ping(ctx); err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              listen,
				Handler:           newRouter(s, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			printInfo("serving on %s", listen)

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&redisAddr, "redis", "localhost:6379", "Redis address holding the aggregated data")
	cmd.Flags().StringVar(&listen, "listen", ":8080", "address to listen on")
	return cmd
}

// newRouter builds the viewer API. All endpoints return JSON payloads
// written by the aggregate command.
func newRouter(s store.Store, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/genes", serveKey(s, logger, store.KeyGeneIndex))
		r.Get("/genomes", serveKey(s, logger, store.KeyGenomeIndex))
		r.Get("/alignments", serveKey(s, logger, store.KeyAlignments))
		r.Get("/tsne", serveKey(s, logger, store.KeyTSNE))
		r.Get("/distances", serveDistances(s, logger))
	})

	return r
}

// serveKey returns a handler that relays the stored JSON payload at key.
func serveKey(s store.Store, logger *log.Logger, key string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		data, found, err := s.Get(req.Context(), key)
		if err != nil {
			logger.Error("store read failed", "key", key, "err", err)
			writeJSONError(w, http.StatusInternalServerError, "store read failed")
			return
		}
		if !found {
			writeJSONError(w, http.StatusNotFound, "no data aggregated under "+key)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}

// serveDistances reassembles the chunked distance matrix into one payload.
func serveDistances(s store.Store, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		m, err := store.ReadDistances(req.Context(), s)
		if err != nil {
			logger.Error("reading distances failed", "err", err)
			writeJSONError(w, http.StatusNotFound, "no aggregated distances available")
			return
		}
		doc := store.MatrixDoc{RowIDs: m.RowIDs, ColIDs: m.ColIDs, Values: m.Values}
		writeJSON(w, http.StatusOK, doc)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
