// Package bible retrieves chapter text from public Bible text APIs.
package bible

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreybb/lectio/models"
)

const (
	defaultESVBaseURL      = "https://api.esv.org"
	defaultBibleAPIBaseURL = "https://bible-api.com"
	defaultTimeout         = 10 * time.Second
	maxResponseBytes       = 1 << 20

	// placeholderKey ships in example .env files and means "no key".
	placeholderKey = "your_esv_api_key_here"
)

// Provider is one of the two interchangeable text sources.
type Provider string

const (
	// ProviderESV is api.esv.org; it requires an API key.
	ProviderESV Provider = "esv"
	// ProviderKJV is the keyless bible-api.com, queried for the KJV.
	ProviderKJV Provider = "kjv"
)

// Translation returns the translation the provider serves.
func (p Provider) Translation() models.Translation {
	if p == ProviderESV {
		return models.TranslationESV
	}
	return models.TranslationKJV
}

// SelectProvider picks the keyed provider when a usable API key is present
// and the keyless one otherwise.
func SelectProvider(apiKey string) Provider {
	key := strings.TrimSpace(apiKey)
	if key == "" || key == placeholderKey {
		return ProviderKJV
	}
	return ProviderESV
}

// FetchError reports an unreachable provider or an unusable response.
type FetchError struct {
	Provider   Provider
	Reference  string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s from %s: status %d: %v", e.Reference, e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s from %s: %v", e.Reference, e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config configures a Fetcher. Zero values fall back to the public
// endpoints and a 10s timeout.
type Config struct {
	APIKey          string
	ESVBaseURL      string
	BibleAPIBaseURL string
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// Fetcher retrieves chapter text from the provider selected at
// construction time.
type Fetcher struct {
	provider        Provider
	apiKey          string
	esvBaseURL      string
	bibleAPIBaseURL string
	client          *http.Client
}

// NewFetcher resolves the provider once from cfg.APIKey.
func NewFetcher(cfg Config) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	f := &Fetcher{
		provider:        SelectProvider(cfg.APIKey),
		apiKey:          strings.TrimSpace(cfg.APIKey),
		esvBaseURL:      strings.TrimRight(orDefault(cfg.ESVBaseURL, defaultESVBaseURL), "/"),
		bibleAPIBaseURL: strings.TrimRight(orDefault(cfg.BibleAPIBaseURL, defaultBibleAPIBaseURL), "/"),
		client:          client,
	}

	if f.provider == ProviderESV {
		log.Println("INFO (Fetcher): Using ESV API")
	} else {
		log.Println("INFO (Fetcher): Using free Bible API (KJV translation)")
	}
	return f
}

// Provider returns the provider chosen at construction.
func (f *Fetcher) Provider() Provider { return f.provider }

// Fetch retrieves the text of one chapter. Any transport error, non-2xx
// status, or malformed payload is a *FetchError; there is no retry.
func (f *Fetcher) Fetch(ctx context.Context, chapter models.Chapter) (*models.Passage, error) {
	ref := chapter.String()

	var (
		canonical, text string
		err             error
	)
	switch f.provider {
	case ProviderESV:
		canonical, text, err = f.fetchESV(ctx, ref)
	default:
		canonical, text, err = f.fetchBibleAPI(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, &FetchError{Provider: f.provider, Reference: ref, Err: fmt.Errorf("empty passage text")}
	}
	if canonical == "" {
		canonical = ref
	}

	translation := f.provider.Translation()
	return &models.Passage{
		Reference:   canonical,
		Text:        strings.TrimSpace(text),
		Translation: translation,
		Link:        GatewayLink(ref, translation),
	}, nil
}

type esvResponse struct {
	Canonical string   `json:"canonical"`
	Passages  []string `json:"passages"`
}

func (f *Fetcher) fetchESV(ctx context.Context, ref string) (string, string, error) {
	params := url.Values{}
	params.Set("q", ref)
	params.Set("include-headings", "true")
	params.Set("include-verse-numbers", "true")
	params.Set("include-short-copyright", "true")
	endpoint := f.esvBaseURL + "/v3/passage/text/?" + params.Encode()

	var resp esvResponse
	if err := f.getJSON(ctx, endpoint, ref, map[string]string{"Authorization": "Token " + f.apiKey}, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Passages) == 0 {
		return "", "", &FetchError{Provider: f.provider, Reference: ref, Err: fmt.Errorf("response contained no passages")}
	}
	return resp.Canonical, resp.Passages[0], nil
}

type bibleAPIResponse struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

func (f *Fetcher) fetchBibleAPI(ctx context.Context, ref string) (string, string, error) {
	endpoint := f.bibleAPIBaseURL + "/" + url.PathEscape(strings.ToLower(ref)) + "?translation=kjv"

	var resp bibleAPIResponse
	if err := f.getJSON(ctx, endpoint, ref, nil, &resp); err != nil {
		return "", "", err
	}
	return resp.Reference, resp.Text, nil
}

func (f *Fetcher) getJSON(ctx context.Context, endpoint, ref string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Provider: f.provider, Reference: ref, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &FetchError{Provider: f.provider, Reference: ref, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &FetchError{Provider: f.provider, Reference: ref, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{Provider: f.provider, Reference: ref, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", truncate(string(body), 200))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Provider: f.provider, Reference: ref, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed payload: %w", err)}
	}
	return nil
}

// GatewayLink returns a Bible Gateway URL for reading ref online.
func GatewayLink(ref string, translation models.Translation) string {
	params := url.Values{}
	params.Set("search", ref)
	params.Set("version", string(translation))
	return "https://www.biblegateway.com/passage/?" + params.Encode()
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
