package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/lectio/bible"
	"github.com/coreybb/lectio/plan"
)

type env struct {
	planFile      string
	telegramPosts atomic.Int32
}

// setupEnv points every upstream at httptest servers and writes a UTC plan
// that started daysAgo days ago.
func setupEnv(t *testing.T, daysAgo int, providerStatus int) *env {
	t.Helper()
	e := &env{planFile: filepath.Join(t.TempDir(), "reading_plan.json")}

	kjv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(providerStatus)
		_, _ = w.Write([]byte(`{"reference":"Psalms 1","text":"Blessed is the man"}`))
	}))
	telegram := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.telegramPosts.Add(1)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(kjv.Close)
	t.Cleanup(telegram.Close)

	t.Setenv("TELEGRAM_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("ESV_API_KEY", "")
	t.Setenv("DB_CONNECTION_STRING", "")
	t.Setenv("ARCHIVE_DIR", "")
	t.Setenv("PLAN_FILE", e.planFile)
	t.Setenv("BIBLE_API_BASE_URL", kjv.URL)
	t.Setenv("TELEGRAM_BASE_URL", telegram.URL)

	start := time.Now().UTC().AddDate(0, 0, -daysAgo).Format(time.DateOnly)
	body := `{"references":"Psalms 1-3","start_date":"` + start + `","daily_time":"08:00","timezone":"UTC"}`
	require.NoError(t, os.WriteFile(e.planFile, []byte(body), 0o644))
	return e
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_Delivers(t *testing.T) {
	e := setupEnv(t, 0, http.StatusOK)

	out, err := execute(t, "run")

	require.NoError(t, err)
	assert.Contains(t, out, "delivered: Day 1/3 Psalms 1")
	assert.EqualValues(t, 1, e.telegramPosts.Load())
}

func TestRoot_DefaultsToRun(t *testing.T) {
	e := setupEnv(t, 1, http.StatusOK)

	out, err := execute(t)

	require.NoError(t, err)
	assert.Contains(t, out, "Day 2/3 Psalms 2")
	assert.EqualValues(t, 1, e.telegramPosts.Load())
}

func TestRun_DryRunSendsNothing(t *testing.T) {
	e := setupEnv(t, 0, http.StatusOK)

	out, err := execute(t, "run", "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, out, "Today's Bible Reading - Day 1")
	assert.Contains(t, out, "Blessed is the man")
	assert.Zero(t, e.telegramPosts.Load())
}

func TestRun_CompletePlanSucceeds(t *testing.T) {
	e := setupEnv(t, 10, http.StatusOK)

	out, err := execute(t, "run")

	require.NoError(t, err)
	assert.Contains(t, out, "Reading plan complete (3 chapters)")
	assert.Zero(t, e.telegramPosts.Load())
}

func TestRun_ProviderFailure(t *testing.T) {
	e := setupEnv(t, 0, http.StatusInternalServerError)

	_, err := execute(t, "run")

	var fetchErr *bible.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, e.telegramPosts.Load())
}

func TestRun_MissingPlan(t *testing.T) {
	setupEnv(t, 0, http.StatusOK)

	_, err := execute(t, "run", "--plan", filepath.Join(t.TempDir(), "missing.json"))

	var cfgErr *plan.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRun_WithHistorySkipsRepeat(t *testing.T) {
	e := setupEnv(t, 0, http.StatusOK)
	t.Setenv("DB_CONNECTION_STRING", "sqlite://"+filepath.Join(t.TempDir(), "history.db"))
	archive := t.TempDir()
	t.Setenv("ARCHIVE_DIR", archive)

	_, err := execute(t, "run")
	require.NoError(t, err)
	out, err := execute(t, "run")
	require.NoError(t, err)

	assert.Contains(t, out, "skipped: Day 1/3 Psalms 1")
	assert.EqualValues(t, 1, e.telegramPosts.Load())

	files, err := filepath.Glob(filepath.Join(archive, "messages", "*", "day-001.html"))
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = execute(t, "run", "--force")
	require.NoError(t, err)
	assert.EqualValues(t, 2, e.telegramPosts.Load())
}

func TestPlanCmd(t *testing.T) {
	setupEnv(t, 1, http.StatusOK)

	out, err := execute(t, "plan", "-n", "5")

	require.NoError(t, err)
	assert.Contains(t, out, "Progress: Day 2/3")
	assert.Contains(t, out, "Psalms 2")
	assert.Contains(t, out, "Psalms 3")
	assert.NotContains(t, out, "Psalms 1\n")
}

func TestInitCmd(t *testing.T) {
	setupEnv(t, 0, http.StatusOK)
	path := filepath.Join(t.TempDir(), "plans", "new.yaml")

	out, err := execute(t, "init", "--plan", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Psalms 1-15,120-134")

	p, err := plan.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SGT", p.Timezone)

	_, err = execute(t, "init", "--plan", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "init", "--plan", path, "--force")
	assert.NoError(t, err)
}
