// Package plan loads and validates the reading-plan record.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"github.com/coreybb/lectio/models"
	"github.com/coreybb/lectio/webutil"
)

// Format selects the on-disk encoding of a plan file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const (
	defaultReferences = "Psalms 1-15,120-134"
	defaultDailyTime  = "08:00"
	defaultTimezone   = "SGT"
)

// ConfigError reports a missing or malformed reading-plan record.
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Field != "" && e.Path != "":
		return fmt.Sprintf("reading plan %s: %s: %v", e.Path, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("reading plan: %s: %v", e.Field, e.Err)
	case e.Path != "":
		return fmt.Sprintf("reading plan %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("reading plan: %v", e.Err)
	}
}

func (e *ConfigError) Unwrap() error { return e.Err }

// record is the plan as written by users. A legacy current_day field may
// be present; it is ignored because the day is derived from start_date.
type record struct {
	References string `json:"references" yaml:"references"`
	StartDate  string `json:"start_date" yaml:"start_date"`
	DailyTime  string `json:"daily_time" yaml:"daily_time"`
	Timezone   string `json:"timezone" yaml:"timezone"`
}

// FormatForPath picks the encoding from the file extension; anything other
// than .yaml or .yml is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates the plan at path.
func Load(path string) (models.ReadingPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ReadingPlan{}, &ConfigError{Path: path, Err: err}
	}

	p, err := Decode(data, FormatForPath(path))
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return models.ReadingPlan{}, err
	}
	return p, nil
}

// Decode parses and validates an encoded plan record.
func Decode(data []byte, format Format) (models.ReadingPlan, error) {
	var rec record
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return models.ReadingPlan{}, &ConfigError{Err: fmt.Errorf("invalid YAML: %w", err)}
		}
	default:
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
			return models.ReadingPlan{}, &ConfigError{Err: fmt.Errorf("invalid JSON: %w", err)}
		}
	}
	return build(rec)
}

func build(rec record) (models.ReadingPlan, error) {
	references := strings.TrimSpace(rec.References)
	if references == "" {
		return models.ReadingPlan{}, &ConfigError{Field: "references", Err: errors.New("must not be empty")}
	}

	loc, err := ResolveLocation(rec.Timezone)
	if err != nil {
		return models.ReadingPlan{}, &ConfigError{Field: "timezone", Err: err}
	}

	start, err := parseStartDate(rec.StartDate, loc)
	if err != nil {
		return models.ReadingPlan{}, &ConfigError{Field: "start_date", Err: err}
	}

	dailyTime, err := normalizeDailyTime(rec.DailyTime)
	if err != nil {
		return models.ReadingPlan{}, &ConfigError{Field: "daily_time", Err: err}
	}

	return models.ReadingPlan{
		References: references,
		StartDate:  start,
		DailyTime:  dailyTime,
		Timezone:   strings.TrimSpace(rec.Timezone),
		Location:   loc,
	}, nil
}

// parseStartDate accepts ISO dates and falls back to dateparse for other
// unambiguous spellings. Only the calendar date is kept.
func parseStartDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("must not be empty")
	}

	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		t, err = dateparse.ParseIn(raw, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
		}
		log.Printf("WARN (Plan): start_date %q is not ISO formatted, read as %s", raw, t.Format(time.DateOnly))
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

func normalizeDailyTime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("must not be empty")
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("expected HH:MM, got %q", raw)
}

// Default returns the bootstrap plan: Psalms 1-15 and 120-134, starting on
// the date of now in Singapore time, delivered at 08:00.
func Default(now time.Time) models.ReadingPlan {
	loc, _ := ResolveLocation(defaultTimezone)
	local := now.In(loc)
	return models.ReadingPlan{
		References: defaultReferences,
		StartDate:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
		DailyTime:  defaultDailyTime,
		Timezone:   defaultTimezone,
		Location:   loc,
	}
}

// Save writes p to path in the encoding implied by its extension.
func Save(path string, p models.ReadingPlan) error {
	rec := record{
		References: p.References,
		StartDate:  p.StartDateString(),
		DailyTime:  p.DailyTime,
		Timezone:   p.Timezone,
	}

	var data []byte
	var err error
	if FormatForPath(path) == FormatYAML {
		data, err = yaml.Marshal(rec)
	} else {
		data, err = json.MarshalIndent(rec, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode reading plan: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plan directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write reading plan %s: %w", path, err)
	}

	log.Printf("INFO (Plan): Saved reading plan configuration to %s", path)
	return nil
}

// Fingerprint identifies a plan by its references and start date, so that
// delivery history from an edited plan is not mistaken for the current one.
func Fingerprint(p models.ReadingPlan) string {
	hash, err := webutil.GenerateHash(p.References + "|" + p.StartDateString())
	if err != nil {
		// sha256 writes never fail; keep the zero value usable anyway.
		return ""
	}
	return hash
}
