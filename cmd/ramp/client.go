package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/zkramp/ramp-daemon/pkg/jwtauth"
)

const requestTimeout = 30 * time.Second

// client talks to the REST interface of the daemon.
type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func getClient(ctx *cli.Context) (*client, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	baseURL, ok := state[daemonURLKey]
	if !ok || baseURL == "" {
		return nil, fmt.Errorf("set daemon url with `config set %s`", daemonURLKey)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid daemon url: %w", err)
	}

	return &client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   state[tokenKey],
		http:    &http.Client{Timeout: requestTimeout},
	}, nil
}

func (c *client) get(path string, query url.Values) ([]byte, error) {
	return c.do(http.MethodGet, path, query, nil)
}

func (c *client) post(path string, body interface{}) ([]byte, error) {
	return c.do(http.MethodPost, path, nil, body)
}

func (c *client) put(path string, body interface{}) ([]byte, error) {
	return c.do(http.MethodPut, path, nil, body)
}

func (c *client) delete(path string) ([]byte, error) {
	return c.do(http.MethodDelete, path, nil, nil)
}

func (c *client) do(
	method, path string, query url.Values, body interface{},
) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(buf)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", jwtauth.Header(c.token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to daemon: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

func parseError(status int, body []byte) error {
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Error == "" {
		return errors.New(http.StatusText(status))
	}
	return fmt.Errorf("%s: %s", http.StatusText(status), resp.Error)
}

func queryFromFlags(ctx *cli.Context, flags ...string) url.Values {
	query := url.Values{}
	for _, f := range flags {
		if ctx.IsSet(f) {
			query.Set(f, ctx.String(f))
		}
	}
	return query
}
