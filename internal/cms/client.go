// Package cms is a small GraphQL-over-HTTP client for the headless CMS. It
// speaks the connection (edges/node) and get-by-path queries the CMS
// generates per collection and hands nodes back as plain maps.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	cb "github.com/sony/gobreaker"
	"io"
	"net/http"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/metrics"
	"sitecms/internal/platform/logger"
	"strings"
	"time"
)

const (
	pageSize        = 50
	maxResponseSize = 16 << 20
)

type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

type Client struct {
	url     string
	token   string
	http    *http.Client
	breaker *cb.CircuitBreaker
	log     *logger.Logger
	metrics *metrics.Metrics
}

// Node is one document as returned by the CMS, including its `_sys` block.
type Node map[string]any

func New(cfg Config, log *logger.Logger, m *metrics.Metrics) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("cms url: %w", domainerr.ErrNotConfigured)
	}
	if log == nil {
		log = logger.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	settings := cb.Settings{
		Name:        "cms",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts cb.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a missing document is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domainerr.ErrNotFound)
		},
		OnStateChange: func(name string, from, to cb.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &Client{
		url:     cfg.URL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		breaker: cb.NewCircuitBreaker(settings),
		log:     log,
		metrics: m,
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Do runs one query and decodes its data object into out. name labels the
// request in logs and metrics.
func (c *Client) Do(ctx context.Context, name, query string, vars map[string]any, out any) error {
	started := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, query, vars, out)
	})
	c.metrics.CMSRequest(name, started, err)
	if err != nil {
		c.log.Debug("cms query failed", "query", name, "error", err)
		return fmt.Errorf("cms %s: %w", name, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-API-KEY", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var gr graphQLResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, 0, len(gr.Errors))
		for _, e := range gr.Errors {
			msgs = append(msgs, e.Message)
		}
		msg := strings.Join(msgs, "; ")
		if isNotFound(msg) {
			return fmt.Errorf("%w: %s", domainerr.ErrNotFound, msg)
		}
		return errors.New(msg)
	}
	if out == nil || len(gr.Data) == 0 {
		return nil
	}
	return json.Unmarshal(gr.Data, out)
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type connection struct {
	PageInfo pageInfo `json:"pageInfo"`
	Edges    []struct {
		Node Node `json:"node"`
	} `json:"edges"`
}

// Connection fetches every document in a collection, following cursors until
// the CMS reports no further page.
func (c *Client) Connection(ctx context.Context, collection string) ([]Node, error) {
	query, err := connectionQuery(collection)
	if err != nil {
		return nil, err
	}
	field := collection + "Connection"

	var nodes []Node
	after := ""
	for {
		vars := map[string]any{"first": pageSize}
		if after != "" {
			vars["after"] = after
		}
		var data map[string]*connection
		if err := c.Do(ctx, field, query, vars, &data); err != nil {
			return nil, err
		}
		conn := data[field]
		if conn == nil {
			return nil, fmt.Errorf("cms %s: missing from response", field)
		}
		for _, e := range conn.Edges {
			if e.Node != nil {
				nodes = append(nodes, e.Node)
			}
		}
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" || conn.PageInfo.EndCursor == after {
			return nodes, nil
		}
		after = conn.PageInfo.EndCursor
	}
}

// Document fetches one document by its path relative to the collection
// directory, e.g. "strategy.mdx". A null result is ErrNotFound.
func (c *Client) Document(ctx context.Context, collection, relativePath string) (Node, error) {
	query, err := documentQuery(collection)
	if err != nil {
		return nil, err
	}
	var data map[string]Node
	err = c.Do(ctx, collection, query, map[string]any{"relativePath": relativePath}, &data)
	if err != nil {
		return nil, err
	}
	node := data[collection]
	if node == nil {
		return nil, fmt.Errorf("%s/%s: %w", collection, relativePath, domainerr.ErrNotFound)
	}
	return node, nil
}

func isNotFound(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "unable to find record") || strings.Contains(msg, "not found")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
