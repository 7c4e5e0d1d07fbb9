package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Draaaaaaven/ecad/pkg/manager"
)

type server struct {
	mgr    *manager.Manager
	logger *log.Logger
}

// NewRouter returns the HTTP handler for mgr. A nil logger uses
// log.Default().
func NewRouter(mgr *manager.Manager, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	s := &server{mgr: mgr, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.healthz)
	r.Route("/databases", func(r chi.Router) {
		r.Get("/", s.listDatabases)
		r.Route("/{db}", func(r chi.Router) {
			r.Get("/", s.getDatabase)
			r.Get("/hierarchy", s.getHierarchy)
			r.Get("/cells", s.listCells)
			r.Route("/cells/{cell}", func(r chi.Router) {
				r.Get("/", s.getCell)
				r.Get("/layers", s.listLayers)
				r.Get("/nets", s.listNets)
				r.Get("/connectivity", s.getConnectivity)
				r.Get("/metal-fraction", s.getMetalFraction)
				r.Post("/flatten", s.flattenCell)
			})
		})
	})
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
