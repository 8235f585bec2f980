package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gracewave/gracewave/pkg/application"
)

var (
	// IdentifierAttempts counts church identifier candidates probed for
	// uniqueness.
	IdentifierAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gracewave_identifier_attempts_total",
		Help: "Church identifier candidates probed for uniqueness.",
	})
	// IdentifierCollisions counts candidates rejected because the
	// identifier was already taken.
	IdentifierCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gracewave_identifier_collisions_total",
		Help: "Church identifier candidates rejected as already taken.",
	})
)

type PrometheusController struct {
	path string
}

func NewPrometheusController(path string) application.Controller {
	if path == "" {
		path = "/debug/prometheus"
	}
	return &PrometheusController{path: path}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.Handler()).Methods(http.MethodGet)
}
