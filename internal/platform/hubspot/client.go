package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/signalpost/leadcapture-backend/internal/platform/ctxutil"
	"github.com/signalpost/leadcapture-backend/internal/platform/envutil"
	"github.com/signalpost/leadcapture-backend/internal/platform/httpx"
	"github.com/signalpost/leadcapture-backend/internal/platform/logger"
)

// Client is the remote CRM API surface this backend consumes. The CRM owns
// contact uniqueness; this client only reports what the remote said.
type Client interface {
	CreateContact(ctx context.Context, email string) (*Contact, error)
	SearchContactsByEmail(ctx context.Context, email string) ([]Contact, error)
	CreateEngagement(ctx context.Context, req CreateEngagementRequest) (*Engagement, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     strings.TrimSpace(os.Getenv("HUBSPOT_API_KEY")),
		BaseURL:    strings.TrimSpace(os.Getenv("HUBSPOT_BASE_URL")),
		Timeout:    envutil.Seconds("HUBSPOT_TIMEOUT_SECONDS", 30*time.Second),
		MaxRetries: envutil.Int("HUBSPOT_MAX_RETRIES", 3),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing HUBSPOT_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.hubapi.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	return &client{
		log:        log.With("client", "HubSpotClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

// --- public request/response types ---

type Contact struct {
	ID    string
	Email string
}

type CreateEngagementRequest struct {
	ContactID string
	Body      string
	// Timestamp is required; Attach defaults it before calling.
	Timestamp time.Time
}

type Engagement struct {
	ID string
}

// --- wire types ---

// flexID tolerates the remote returning ids as strings or bare numbers;
// both normalize to the opaque string form used everywhere locally.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type createContactRequest struct {
	Email string `json:"email"`
}

type createContactResponse struct {
	ID flexID `json:"id"`
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchContactsRequest struct {
	Filters []searchFilter `json:"filters"`
}

type searchContactsResponse struct {
	Results []struct {
		ID    flexID `json:"id"`
		Email string `json:"email"`
	} `json:"results"`
}

type engagementAssociations struct {
	ContactIDs []string `json:"contactIds"`
}

type createEngagementRequest struct {
	Body         string                 `json:"body"`
	Timestamp    int64                  `json:"timestamp"`
	Associations engagementAssociations `json:"associations"`
}

type createEngagementResponse struct {
	ID flexID `json:"id"`
}

func (c *client) CreateContact(ctx context.Context, email string) (*Contact, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("hubspot: email required")
	}

	_, raw, err := c.do(ctx, http.MethodPost, "/contacts", createContactRequest{Email: email})
	if err != nil {
		return nil, err
	}

	var out createContactResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{Op: "create contact", Err: err}
	}
	if out.ID == "" {
		return nil, &DecodeError{Op: "create contact", Err: fmt.Errorf("response missing id")}
	}
	return &Contact{ID: string(out.ID), Email: email}, nil
}

func (c *client) SearchContactsByEmail(ctx context.Context, email string) ([]Contact, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("hubspot: email required")
	}

	body := searchContactsRequest{
		Filters: []searchFilter{{PropertyName: "email", Operator: "EQ", Value: email}},
	}
	_, raw, err := c.do(ctx, http.MethodPost, "/contacts/search", body)
	if err != nil {
		return nil, err
	}

	var out searchContactsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{Op: "search contacts", Err: err}
	}
	contacts := make([]Contact, 0, len(out.Results))
	for _, r := range out.Results {
		contacts = append(contacts, Contact{ID: string(r.ID), Email: r.Email})
	}
	return contacts, nil
}

func (c *client) CreateEngagement(ctx context.Context, req CreateEngagementRequest) (*Engagement, error) {
	if strings.TrimSpace(req.ContactID) == "" {
		return nil, fmt.Errorf("hubspot: contact id required")
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}

	wire := createEngagementRequest{
		Body:      req.Body,
		Timestamp: req.Timestamp.UnixMilli(),
		Associations: engagementAssociations{
			ContactIDs: []string{req.ContactID},
		},
	}
	_, raw, err := c.do(ctx, http.MethodPost, "/engagements", wire)
	if err != nil {
		return nil, err
	}

	var out createEngagementResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{Op: "create engagement", Err: err}
	}
	if out.ID == "" {
		return nil, &DecodeError{Op: "create engagement", Err: fmt.Errorf("response missing id")}
	}
	return &Engagement{ID: string(out.ID)}, nil
}

// ---------- HTTP / retry helpers ----------

func (c *client) do(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			return resp, raw, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("HubSpot request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, nil, errors.New("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}

		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			he.Message = strings.TrimSpace(er.Message)
		}
		return resp, raw, he
	}

	return resp, raw, nil
}
