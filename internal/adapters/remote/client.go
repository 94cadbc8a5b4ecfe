// Package remote is the HTTP client for the detection service and the
// report store. Every failure is returned with the error kind of the calling
// pipeline stage; nothing is retried.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Client talks to the detection service and the report store.
type Client struct {
	base       string
	detectBase string
	client     *http.Client
	timeout    time.Duration
	logger     logger.Logger
}

// New creates a Client for the report store at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:    trimBase(baseURL),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.detectBase == "" {
		c.detectBase = c.base
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = logger.Named("remote")
	}
	return c
}

func trimBase(s string) string { return strings.TrimRight(s, "/") }

// Detect sends one batch of encoded images for detection.
func (c *Client) Detect(ctx context.Context, req types.DetectRequest) (types.DetectResponse, error) {
	const op = "remote.Detect"
	var out types.DetectResponse
	err := c.do(ctx, http.MethodPost, c.detectBase+"/api/detect/images", req, &out)
	return out, errkind.WrapKind(op, model.ErrUpload, err)
}

// CreateDraft stores a new draft report.
func (c *Client) CreateDraft(ctx context.Context, req types.DraftRequest) (types.DraftResponse, error) {
	const op = "remote.CreateDraft"
	var out types.DraftResponse
	if err := c.do(ctx, http.MethodPost, c.base+"/api/reports/draft", req, &out); err != nil {
		return out, errkind.WrapKind(op, model.ErrDraftCreation, err)
	}
	if out.UUID == "" {
		return out, errkind.WrapKind(op, model.ErrDraftCreation, errors.New("response carries no uuid"))
	}
	return out, nil
}

// Submit moves a draft to submitted.
func (c *Client) Submit(ctx context.Context, uuid string) (types.Ticket, error) {
	const op = "remote.Submit"
	var out types.Ticket
	err := c.do(ctx, http.MethodPost, c.base+"/api/reports/submit/"+url.PathEscape(uuid), nil, &out)
	return out, errkind.WrapKind(op, model.ErrSubmission, err)
}

// Get fetches one ticket.
func (c *Client) Get(ctx context.Context, uuid string) (types.Ticket, error) {
	const op = "remote.Get"
	var out types.Ticket
	err := c.do(ctx, http.MethodGet, c.base+"/api/reports/"+url.PathEscape(uuid), nil, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return out, errkind.WrapKind(op, model.ErrNotFound, err)
		}
		return out, errkind.WrapKind(op, model.ErrQuery, err)
	}
	return out, nil
}

// List fetches one page of an owner's tickets, newest first.
func (c *Client) List(ctx context.Context, owner string, skip, limit int) (types.TicketList, error) {
	const op = "remote.List"
	q := url.Values{}
	if owner != "" {
		q.Set("user_id", owner)
	}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	var out types.TicketList
	err := c.do(ctx, http.MethodGet, c.base+"/api/tickets?"+q.Encode(), nil, &out)
	return out, errkind.WrapKind(op, model.ErrQuery, err)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "request failed",
			logger.String("method", method),
			logger.String("url", target),
			logger.Error(err))
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug(ctx, "request done",
		logger.String("method", method),
		logger.String("url", target),
		logger.Int("status", resp.StatusCode),
		logger.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	se := &StatusError{Code: resp.StatusCode}
	var er types.ErrorResponse
	if json.Unmarshal(data, &er) == nil && er.Message != "" {
		se.Message = er.Message
	} else {
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}
