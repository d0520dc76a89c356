// Package api is the client for the collaborator's REST API: authentication,
// profile updates, diary storage and recommendation generation.
//
// Every method returns either a decoded result or an error whose kind is one
// of apperror.ErrTransport (no usable response) or apperror.ErrRejected
// (non-2xx status, with the collaborator's "detail" when it sent one).
// Nothing is retried and no timeout is imposed here; the caller's context is
// the only way to abandon a request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
)

// DefaultBaseURL is where the collaborator listens during local development.
const DefaultBaseURL = "http://localhost:8000/api"

// requestIDHeader is read by chi's RequestID middleware, so a request can be
// followed from the client log into the collaborator's log.
const requestIDHeader = "X-Request-Id"

// maxErrorBody caps how much of a failed response we read looking for "detail".
const maxErrorBody = 64 << 10

// Client talks to one collaborator instance.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient returns a Client for baseURL (e.g. "http://localhost:8000/api").
// A nil httpClient means a plain &http.Client{} with no timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// BaseURL returns the collaborator address this client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login authenticates userID and returns the stored profile.
//
// HTTP: POST /auth/login?user_id={id}
func (c *Client) Login(ctx context.Context, userID string) (*model.Profile, error) {
	var resp struct {
		User *model.Profile `json:"user"`
	}
	q := url.Values{"user_id": {userID}}
	if err := c.do(ctx, http.MethodPost, "/auth/login", q, nil, &resp); err != nil {
		return nil, fmt.Errorf("api: login %s: %w", userID, err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("api: login %s: %w", userID, apperror.Transport(errors.New("malformed response: missing user")))
	}
	return resp.User, nil
}

// Register creates a new profile. It does not log the user in.
//
// HTTP: POST /auth/register
func (c *Client) Register(ctx context.Context, profile *model.Profile) error {
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, profile, nil); err != nil {
		return fmt.Errorf("api: register %s: %w", profile.UserID, err)
	}
	return nil
}

// UpdateProfile replaces the stored profile of userID.
//
// HTTP: PUT /users/{user_id}
func (c *Client) UpdateProfile(ctx context.Context, userID string, profile *model.Profile) error {
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID), nil, profile, nil); err != nil {
		return fmt.Errorf("api: update profile %s: %w", userID, err)
	}
	return nil
}

// ListDiary returns the user's diary entries in the collaborator's order.
//
// HTTP: GET /diary/{user_id}
func (c *Client) ListDiary(ctx context.Context, userID string) ([]model.DiaryEntry, error) {
	entries := []model.DiaryEntry{}
	if err := c.do(ctx, http.MethodGet, "/diary/"+url.PathEscape(userID), nil, nil, &entries); err != nil {
		return nil, fmt.Errorf("api: list diary %s: %w", userID, err)
	}
	if entries == nil {
		// a literal JSON null decodes to a nil slice
		entries = []model.DiaryEntry{}
	}
	return entries, nil
}

// AppendDiary stores a new entry for userID.
//
// HTTP: POST /diary/{user_id}
func (c *Client) AppendDiary(ctx context.Context, userID string, entry model.DiaryEntry) error {
	if err := c.do(ctx, http.MethodPost, "/diary/"+url.PathEscape(userID), nil, entry, nil); err != nil {
		return fmt.Errorf("api: append diary %s: %w", userID, err)
	}
	return nil
}

// GenerateRecommendation asks the collaborator for fresh advice based on
// the user's profile and recent diary.
//
// HTTP: POST /recommendations/{user_id}
func (c *Client) GenerateRecommendation(ctx context.Context, userID string) (string, error) {
	var resp struct {
		Recommendation *string `json:"recommendation"`
	}
	if err := c.do(ctx, http.MethodPost, "/recommendations/"+url.PathEscape(userID), nil, nil, &resp); err != nil {
		return "", fmt.Errorf("api: generate recommendation %s: %w", userID, err)
	}
	if resp.Recommendation == nil {
		return "", fmt.Errorf("api: generate recommendation %s: %w", userID,
			apperror.Transport(errors.New("malformed response: missing recommendation")))
	}
	return *resp.Recommendation, nil
}

// RecommendationHistory returns previously generated advice, newest first.
// limit <= 0 leaves the page size to the collaborator.
//
// HTTP: GET /recommendations/{user_id}/history?limit={n}
func (c *Client) RecommendationHistory(ctx context.Context, userID string, limit int) ([]model.Recommendation, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	history := []model.Recommendation{}
	path := "/recommendations/" + url.PathEscape(userID) + "/history"
	if err := c.do(ctx, http.MethodGet, path, q, nil, &history); err != nil {
		return nil, fmt.Errorf("api: recommendation history %s: %w", userID, err)
	}
	return history, nil
}

// do performs one request. body (if non-nil) is sent as JSON; out (if
// non-nil) receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return apperror.Transport(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("collaborator request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return apperror.Transport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readDetail(resp.Body)
		c.logger.Warn("collaborator rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.Int("http_status", resp.StatusCode),
			slog.String("detail", detail),
		)
		return apperror.Rejected(resp.StatusCode, detail)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("collaborator response could not be decoded",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return apperror.Transport(fmt.Errorf("malformed response: %w", err))
	}

	c.logger.Debug("collaborator request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.Int("http_status", resp.StatusCode),
	)
	return nil
}

// readDetail extracts the "detail" member of an error body. It understands a
// plain string and the list-of-{msg} form validation frameworks emit, and
// returns "" for anything else.
func readDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(b) == 0 {
		return ""
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
