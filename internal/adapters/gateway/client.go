// Package gateway is the thin contract to the remote scoring service: read
// endpoints for reference data and drill-downs, plus the one authenticated
// write for recording a point allocation.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/okian/levelup/internal/domain/model"
	"github.com/okian/levelup/internal/domain/session"
	"github.com/okian/levelup/pkg/logger"
	"github.com/okian/levelup/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout = 10 * time.Second
)

// TokenSource supplies the bearer credential for mutating calls. The session
// holder implements it; tests may fabricate one.
type TokenSource interface {
	Token() (string, bool)
}

// Client wraps http.Client for the scoring service API.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  TokenSource
	log     logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout bounds every remote call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithTokenSource sets the credential source for authenticated calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		if ts != nil {
			c.tokens = ts
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a gateway client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTeams returns all teams with their current totals. GET /teams.
func (c *Client) ListTeams(ctx context.Context) ([]model.TeamSummary, error) {
	var teams []model.TeamSummary
	if err := c.get(ctx, "/teams", "/teams", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// ListTeamsWithTotals returns the dashboard listing. GET /dashboard.
func (c *Client) ListTeamsWithTotals(ctx context.Context) ([]model.TeamSummary, error) {
	var teams []model.TeamSummary
	if err := c.get(ctx, "/dashboard", "/dashboard", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// GetTeamDetail returns one team with its roster. GET /team/{id}.
func (c *Client) GetTeamDetail(ctx context.Context, teamID string) (model.TeamDetail, error) {
	var team model.TeamDetail
	if err := c.get(ctx, "/team", "/team/"+url.PathEscape(teamID), &team); err != nil {
		return model.TeamDetail{}, err
	}
	return team, nil
}

// GetPlayerBreakdown returns a player's (activity, points) rows; the total is
// derived client-side. GET /player/{id}.
func (c *Client) GetPlayerBreakdown(ctx context.Context, playerID string) ([]model.BreakdownRow, error) {
	var rows []model.BreakdownRow
	if err := c.get(ctx, "/player", "/player/"+url.PathEscape(playerID), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActivities returns all scoring categories. GET /activities.
func (c *Client) ListActivities(ctx context.Context) ([]model.Activity, error) {
	var activities []model.Activity
	if err := c.get(ctx, "/activities", "/activities", &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// ListPlayersForTeam returns the roster of one team. GET /players/team/{id}.
func (c *Client) ListPlayersForTeam(ctx context.Context, teamID string) ([]model.Player, error) {
	var players []model.Player
	if err := c.get(ctx, "/players/team", "/players/team/"+url.PathEscape(teamID), &players); err != nil {
		return nil, err
	}
	return players, nil
}

// loginRequest and loginResponse mirror POST /login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// errorResponse is the service's error payload shape.
type errorResponse struct {
	Error string `json:"error"`
}

// Login exchanges credentials for a bearer session. POST /login. On a
// rejected attempt the returned error wraps ErrLoginFailed and carries the
// server-reported reason when one was given.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	start := time.Now()
	resp, err := c.post(ctx, "/login", loginRequest{Username: username, Password: password}, "")
	if err != nil {
		c.observe(ctx, "/login", start, err)
		return session.Session{}, err
	}
	body, err := readBody(resp)
	if err != nil {
		err = fmt.Errorf("%w: read login response: %v", ErrTransport, err)
		c.observe(ctx, "/login", start, err)
		return session.Session{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("%w: %s", ErrLoginFailed, serverReason(body))
		c.observe(ctx, "/login", start, err)
		return session.Session{}, err
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		err = fmt.Errorf("%w: decode login response: %v", ErrServer, err)
		c.observe(ctx, "/login", start, err)
		return session.Session{}, err
	}
	c.observe(ctx, "/login", start, nil)
	return session.Session{Username: lr.Username, Token: lr.Token}, nil
}

// CreatePointEntry records one scoring event. POST /points, bearer-authed.
// Entries are append-only; repeating a submission creates a new entry.
func (c *Client) CreatePointEntry(ctx context.Context, playerID, activityID string, points int) error {
	token, ok := c.token()
	if !ok {
		// No session, no network call.
		return fmt.Errorf("%w: no active session", ErrUnauthorized)
	}

	entry := model.PointEntry{PlayerID: playerID, ActivityID: activityID, Points: points}

	start := time.Now()
	resp, err := c.post(ctx, "/points", entry, token)
	if err != nil {
		c.observe(ctx, "/points", start, err)
		return err
	}
	body, err := readBody(resp)
	if err != nil {
		err = fmt.Errorf("%w: read response: %v", ErrTransport, err)
		c.observe(ctx, "/points", start, err)
		return err
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		c.observe(ctx, "/points", start, err)
		return err
	}
	c.observe(ctx, "/points", start, nil)
	return nil
}

// get performs a GET request and decodes the JSON response into out.
// endpoint is the stable metrics label; path carries the concrete ids.
func (c *Client) get(ctx context.Context, endpoint, path string, out interface{}) error {
	start := time.Now()
	err := c.doGet(ctx, path, out)
	c.observe(ctx, endpoint, start, err)
	return err
}

func (c *Client) doGet(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	body, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrServer, err)
	}
	return nil
}

// post performs a POST with a JSON body; token, when non-empty, is attached
// as a bearer credential.
func (c *Client) post(ctx context.Context, path string, body interface{}, token string) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request body: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

func (c *Client) token() (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	return c.tokens.Token()
}

// observe records metrics and logs the outcome of one remote call.
func (c *Client) observe(ctx context.Context, endpoint string, start time.Time, err error) {
	metrics.RecordGatewayDuration(endpoint, time.Since(start).Seconds())
	if err != nil {
		metrics.RecordGatewayRequest(endpoint, "error")
		metrics.RecordGatewayError(endpoint, kind(err))
		if c.log != nil {
			c.log.Warn(ctx, "remote call failed", logger.String("endpoint", endpoint), logger.Error(err))
		}
		return
	}
	metrics.RecordGatewayRequest(endpoint, "ok")
	if c.log != nil {
		c.log.Debug(ctx, "remote call ok", logger.String("endpoint", endpoint))
	}
}

// classifyStatus maps a non-2xx status to its sentinel error kind.
func classifyStatus(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, serverReason(body))
	case code >= 400 && code < 500:
		return fmt.Errorf("%w: %s", ErrRejected, serverReason(body))
	default:
		return fmt.Errorf("%w: status %d", ErrServer, code)
	}
}

// serverReason extracts the service's human-readable error field, if any.
func serverReason(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return "no reason given"
}

// readBody reads and closes the response body.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
