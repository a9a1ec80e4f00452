package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client reads collections from the project-management backend. It only
// issues GET requests and never retries.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

// ActivityQuery narrows the activity feed. Zero values mean no filter.
type ActivityQuery struct {
	Limit     int
	ProjectID string
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	return getList[Project](ctx, c, "projects", "/projects", nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	return getList[Task](ctx, c, "tasks", "/tasks", nil)
}

func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	return getList[Team](ctx, c, "teams", "/teams", nil)
}

// ListTimeLogs returns time logs dated between start and end inclusive.
func (c *Client) ListTimeLogs(ctx context.Context, start, end time.Time) ([]TimeLog, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(DateLayout))
	q.Set("end_date", end.Format(DateLayout))
	return getList[TimeLog](ctx, c, "time logs", "/time-logs", q)
}

func (c *Client) ListActivities(ctx context.Context, query ActivityQuery) ([]Activity, error) {
	q := url.Values{}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.ProjectID != "" {
		q.Set("project_id", query.ProjectID)
	}
	return getList[Activity](ctx, c, "activities", "/activities", q)
}

func getList[T any](ctx context.Context, c *Client, resource, path string, q url.Values) ([]T, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	body, err := c.get(ctx, path, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}

	var env Envelope[[]T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", resource, err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "no message"
		}
		return nil, fmt.Errorf("list %s: %w: %s", resource, ErrEnvelope, msg)
	}
	if env.Data == nil {
		return []T{}, nil
	}
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", classify(ctx, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := strings.TrimSpace(string(data))
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: body}
	}
	return data, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
