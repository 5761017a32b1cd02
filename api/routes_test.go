package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/lectio/models"
	"github.com/coreybb/lectio/scheduler"
)

type fakeLister struct {
	attempts []models.DeliveryAttempt
	err      error
	gotLimit int
}

func (f *fakeLister) ListAttempts(_ context.Context, limit int) ([]models.DeliveryAttempt, error) {
	f.gotLimit = limit
	return f.attempts, f.err
}

func newRouter(t *testing.T, attempts AttemptLister) http.Handler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reading_plan.json")
	body := `{"references":"Psalms 1-15,120-134","start_date":"` +
		time.Now().UTC().Format(time.DateOnly) + `","daily_time":"08:00","timezone":"UTC"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s := scheduler.New(scheduler.Options{PlanFile: path}, nil, nil, nil, nil)
	return SetupRoutes(s, attempts)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, newRouter(t, nil), http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestPlan(t *testing.T) {
	rec := do(t, newRouter(t, nil), http.MethodGet, "/api/plan?upcoming=3")

	require.Equal(t, http.StatusOK, rec.Code)
	var ov scheduler.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	assert.Equal(t, "Psalms 1-15,120-134", ov.References)
	assert.Equal(t, 30, ov.Progress.Total)
	require.Len(t, ov.Upcoming, 3)
	assert.Equal(t, "Psalms 1", ov.Upcoming[0].Chapter.String())
}

func TestPlan_DefaultUpcoming(t *testing.T) {
	rec := do(t, newRouter(t, nil), http.MethodGet, "/api/plan")

	require.Equal(t, http.StatusOK, rec.Code)
	var ov scheduler.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	assert.Len(t, ov.Upcoming, defaultUpcoming)
}

func TestPlan_BadParam(t *testing.T) {
	rec := do(t, newRouter(t, nil), http.MethodGet, "/api/plan?upcoming=abc")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "upcoming must be a non-negative integer")
}

func TestDeliveries_HistoryDisabled(t *testing.T) {
	rec := do(t, newRouter(t, nil), http.MethodGet, "/api/deliveries")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDeliveries_List(t *testing.T) {
	lister := &fakeLister{attempts: []models.DeliveryAttempt{{
		ID:              "a1",
		Day:             3,
		Reference:       "Psalms 3",
		DestinationType: models.DestinationTypeTelegram,
		Status:          string(models.DeliveryStatusDelivered),
	}}}

	rec := do(t, newRouter(t, lister), http.MethodGet, "/api/deliveries?limit=9999")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxDeliveriesLimit, lister.gotLimit)
	var got []models.DeliveryAttempt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Psalms 3", got[0].Reference)
}

func TestDeliveries_StoreError(t *testing.T) {
	rec := do(t, newRouter(t, &fakeLister{err: errors.New("db down")}), http.MethodGet, "/api/deliveries")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
