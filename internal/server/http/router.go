// Package httpserver serves stored files, health and metrics over plain HTTP.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/FredericTischler/safe-zone/internal/errs"
)

// FetchFunc reads one stored file and its content type.
type FetchFunc func(ctx context.Context, dir, name string) ([]byte, string, error)

type files struct {
	fetch FetchFunc
	log   *zap.Logger
}

// NewRouter serves GET /{collection}/file/{rid}/{fn} from fetch, plus /healthz
// and /metrics from gatherer. A nil fetch leaves the file route out.
func NewRouter(log *zap.Logger, collection string, fetch FetchFunc, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	if fetch != nil {
		f := &files{fetch: fetch, log: log}
		r.Get("/"+collection+"/file/{rid}/{fn}", f.serve)
	}
	return r
}

func (f *files) serve(w http.ResponseWriter, r *http.Request) {
	rid, fn := chi.URLParam(r, "rid"), chi.URLParam(r, "fn")
	data, ct, err := f.fetch(r.Context(), rid, fn)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
		return
	case errors.Is(err, errs.ErrValidation):
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	case err != nil:
		f.log.Error("fetch file", zap.String("resource", rid), zap.String("file", fn), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
