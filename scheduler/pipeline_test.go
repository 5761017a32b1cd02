package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/lectio/bible"
	"github.com/coreybb/lectio/delivery"
	"github.com/coreybb/lectio/webutil"
)

type upstreams struct {
	esv, kjv, telegram *httptest.Server
	telegramPosts      atomic.Int32
	lastText           atomic.Value
}

func newUpstreams(t *testing.T, providerStatus int) *upstreams {
	t.Helper()
	u := &upstreams{}

	u.esv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if providerStatus != http.StatusOK {
			w.WriteHeader(providerStatus)
			return
		}
		assert.Equal(t, "Token esv-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"canonical":"Psalm 2","passages":["Why do the nations rage"]}`))
	}))
	u.kjv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if providerStatus != http.StatusOK {
			w.WriteHeader(providerStatus)
			return
		}
		assert.Equal(t, "kjv", r.URL.Query().Get("translation"))
		_, _ = w.Write([]byte(`{"reference":"Psalms 2","text":"Why do the heathen rage"}`))
	}))
	u.telegram = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.telegramPosts.Add(1)
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		u.lastText.Store(body.Text)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(func() {
		u.esv.Close()
		u.kjv.Close()
		u.telegram.Close()
	})
	return u
}

func (u *upstreams) scheduler(t *testing.T, apiKey string) *Scheduler {
	t.Helper()
	fetcher := bible.NewFetcher(bible.Config{
		APIKey:          apiKey,
		ESVBaseURL:      u.esv.URL,
		BibleAPIBaseURL: u.kjv.URL,
	})
	telegram := delivery.NewTelegramDeliveryProvider("tok", u.telegram.URL, 0)
	service := delivery.NewDeliveryService(nil, telegram)
	s := New(Options{PlanFile: writePlan(t, psalmsPlan), ChatID: "42"}, fetcher, service, nil, nil)
	s.now = func() time.Time { return day(2) }
	return s
}

func TestPipeline_KeylessProviderPostsToTelegram(t *testing.T) {
	u := newUpstreams(t, http.StatusOK)
	s := u.scheduler(t, "")

	result, err := s.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, result.Status)
	assert.EqualValues(t, 1, u.telegramPosts.Load())
	text := u.lastText.Load().(string)
	assert.Contains(t, text, "Why do the heathen rage")
	assert.Contains(t, text, "<i>(KJV)</i>")
}

func TestPipeline_KeyedProviderPostsToTelegram(t *testing.T) {
	u := newUpstreams(t, http.StatusOK)
	s := u.scheduler(t, "esv-key")

	_, err := s.Tick(context.Background())

	require.NoError(t, err)
	text := u.lastText.Load().(string)
	assert.Contains(t, text, "Why do the nations rage")
	assert.Contains(t, text, "<i>(ESV)</i>")
}

func TestPipeline_ProviderFailureSendsNothing(t *testing.T) {
	u := newUpstreams(t, http.StatusInternalServerError)
	s := u.scheduler(t, "")

	_, err := s.Tick(context.Background())

	var fetchErr *bible.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	assert.Zero(t, u.telegramPosts.Load())
}

func TestHandleTick(t *testing.T) {
	u := newUpstreams(t, http.StatusOK)
	s := u.scheduler(t, "")

	rec := httptest.NewRecorder()
	webutil.MakeHandler(s.HandleTick)(rec, httptest.NewRequest(http.MethodPost, "/scheduler/tick", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, StatusDelivered, result.Status)
	assert.Equal(t, "Psalms 2", result.Chapter)
}

func TestHandleTick_UpstreamFailureIsBadGateway(t *testing.T) {
	u := newUpstreams(t, http.StatusServiceUnavailable)
	s := u.scheduler(t, "")

	rec := httptest.NewRecorder()
	webutil.MakeHandler(s.HandleTick)(rec, httptest.NewRequest(http.MethodPost, "/scheduler/tick", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Zero(t, u.telegramPosts.Load())
}
