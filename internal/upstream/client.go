package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plataa/triagedash/internal/records"
)

const (
	specialistDashboardPath = "/api/v1/tests/especialista/dashboard"
	responsibleResultsPath  = "/api/v1/tests/responsavel/resultados"
	regionStatsPath         = "/api/v1/ibge/autism-indigenous"
	studentsByRacePath      = "/api/v1/ibge/students-autism-by-race"
	contactPath             = "/api/v1/contact/send"
	loginPath               = "/api/v1/auth/login"

	maxErrorBody = 4 << 10
	maxGeoBody   = 32 << 20
)

var (
	// ErrStatus wraps any non-2xx reply.
	ErrStatus = errors.New("upstream returned error status")
	// ErrUnauthorized is returned for 401 and 403 replies.
	ErrUnauthorized = errors.New("upstream rejected credentials")
)

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource yields the bearer token to attach, "" for none.
type TokenSource interface {
	Token() string
}

// Config defines settings for the upstream client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the screening platform REST API. It never retries; a
// failed call is reported once and the caller decides what to show.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	tokens     TokenSource
	logger     *zap.Logger
}

// New creates an upstream client. tokens may be nil for anonymous use.
func New(httpClient HTTPClient, tokens TokenSource, cfg Config, logger *zap.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:8000"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger.Named("upstream"),
	}
}

// SpecialistDashboard fetches every screening row plus server-side totals.
func (c *Client) SpecialistDashboard(ctx context.Context) (SpecialistPayload, error) {
	var out SpecialistPayload
	if err := c.getJSON(ctx, c.baseURL+specialistDashboardPath, true, &out); err != nil {
		return SpecialistPayload{}, err
	}
	if out.Records == nil {
		out.Records = []records.ScreeningRecord{}
	}
	return out, nil
}

// ResponsibleResults fetches the patients of the logged-in guardian.
func (c *Client) ResponsibleResults(ctx context.Context) ([]PatientPayload, error) {
	var out struct {
		Patients []PatientPayload `json:"pacientes"`
	}
	if err := c.getJSON(ctx, c.baseURL+responsibleResultsPath, true, &out); err != nil {
		return nil, err
	}
	if out.Patients == nil {
		return []PatientPayload{}, nil
	}
	return out.Patients, nil
}

// RegionStats fetches the per-location autism statistics.
func (c *Client) RegionStats(ctx context.Context) ([]RegionStat, error) {
	var out []RegionStat
	if err := c.getJSON(ctx, c.baseURL+regionStatsPath, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StudentsByRace fetches the per-location student counts split by race.
func (c *Client) StudentsByRace(ctx context.Context) ([]StudentRaceRow, error) {
	var out []StudentRaceRow
	if err := c.getJSON(ctx, c.baseURL+studentsByRacePath, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GeoBoundaries downloads a GeoJSON document from an absolute URL. No
// credentials are sent since the resource is usually third-party.
func (c *Client) GeoBoundaries(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGeoBody))
	if err != nil {
		return nil, fmt.Errorf("read geo boundaries: %w", err)
	}
	return body, nil
}

// SendContact posts the contact form.
func (c *Client) SendContact(ctx context.Context, msg records.ContactMessage) error {
	resp, err := c.postJSON(ctx, c.baseURL+contactPath, msg, false)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	resp, err := c.postJSON(ctx, c.baseURL+loginPath, LoginRequest{Email: email, Password: password}, false)
	if err != nil {
		return LoginResponse{}, err
	}
	defer resp.Body.Close()

	var out LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return LoginResponse{}, fmt.Errorf("decode login response: %w", err)
	}
	if out.AccessToken == "" {
		return LoginResponse{}, fmt.Errorf("%w: login reply without token", ErrStatus)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, auth bool, dest any) error {
	resp, err := c.do(ctx, http.MethodGet, url, nil, auth)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	return decodeEnvelope(body, dest)
}

func (c *Client) postJSON(ctx context.Context, url string, payload any, auth bool) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, data, auth)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, auth bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if auth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	c.logger.Debug("upstream call",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	var msg string
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		msg = fmt.Sprintf("unreadable body: %v", err)
	} else {
		msg = errorMessage(raw)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnauthorized, resp.StatusCode, msg)
	}
	return nil, fmt.Errorf("%w: status %d: %s", ErrStatus, resp.StatusCode, msg)
}

// decodeEnvelope accepts both bare payloads and payloads wrapped in a
// top-level "data" member.
func decodeEnvelope(body []byte, dest any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && env.Data[0] != 'n' {
			trimmed = env.Data
		}
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return fmt.Errorf("decode upstream payload: %w", err)
	}
	return nil
}

// errorMessage extracts a readable message from a JSON or plain-text body.
func errorMessage(raw []byte) string {
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
		if body.Message != "" {
			return body.Message
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "no details"
	}
	return msg
}
