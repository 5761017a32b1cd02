package scheduler

import (
	"errors"
	"log"
	"net/http"

	"github.com/coreybb/lectio/bible"
	"github.com/coreybb/lectio/delivery"
	"github.com/coreybb/lectio/webutil"
)

// HandleTick triggers a run over HTTP. Used by Cloud Scheduler or manual
// curl requests.
func (s *Scheduler) HandleTick(w http.ResponseWriter, r *http.Request) error {
	log.Println("INFO (Scheduler): Tick triggered via HTTP")

	result, err := s.Tick(r.Context())
	if err != nil {
		var fetchErr *bible.FetchError
		var delErr *delivery.DeliveryError
		if errors.As(err, &fetchErr) || errors.As(err, &delErr) {
			return webutil.ErrBadGatewayWrap("upstream provider failed", err)
		}
		return webutil.ErrInternalServerWrap("scheduler tick failed", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, result)
	return nil
}
