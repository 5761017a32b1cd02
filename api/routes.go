package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coreybb/lectio/models"
	"github.com/coreybb/lectio/scheduler"
	"github.com/coreybb/lectio/webutil"
)

const (
	apiBasePath        = "/api"
	planPath           = "/plan"
	deliveriesPath     = "/deliveries"
	schedulerTickPath  = "/scheduler/tick"
	healthPath         = "/healthz"
	defaultUpcoming    = 7
	maxUpcoming        = 366
	maxDeliveriesLimit = 500
)

// AttemptLister lists recorded delivery attempts, most recent first.
type AttemptLister interface {
	ListAttempts(ctx context.Context, limit int) ([]models.DeliveryAttempt, error)
}

// SetupRoutes builds the HTTP surface. attempts may be nil when delivery
// history is disabled.
func SetupRoutes(s *scheduler.Scheduler, attempts AttemptLister) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(SetHeader(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8))

	r.Get(healthPath, handleHealthCheck)
	r.Post(schedulerTickPath, webutil.MakeHandler(s.HandleTick))

	r.Route(apiBasePath, func(r chi.Router) {
		r.Get(planPath, webutil.MakeHandler(handlePlan(s)))
		r.Get(deliveriesPath, webutil.MakeHandler(handleDeliveries(attempts)))
	})

	return r
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handlePlan(s *scheduler.Scheduler) webutil.AppHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		n, err := intParam(r, "upcoming", defaultUpcoming, maxUpcoming)
		if err != nil {
			return err
		}

		ov, err := s.Overview(n)
		if err != nil {
			return webutil.ErrInternalServerWrap("failed to load reading plan", err)
		}

		webutil.RespondWithJSON(w, http.StatusOK, ov)
		return nil
	}
}

func handleDeliveries(attempts AttemptLister) webutil.AppHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		limit, err := intParam(r, "limit", 0, maxDeliveriesLimit)
		if err != nil {
			return err
		}

		if attempts == nil {
			webutil.RespondWithJSON(w, http.StatusOK, []models.DeliveryAttempt{})
			return nil
		}

		list, err := attempts.ListAttempts(r.Context(), limit)
		if err != nil {
			return webutil.ErrInternalServerWrap("failed to list deliveries", err)
		}

		webutil.RespondWithJSON(w, http.StatusOK, list)
		return nil
	}
}

// intParam reads a non-negative integer query parameter capped at ceiling.
func intParam(r *http.Request, name string, fallback, ceiling int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, webutil.ErrBadRequest(name + " must be a non-negative integer")
	}
	return min(n, ceiling), nil
}
