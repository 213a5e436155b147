package webhookpubsub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBody = 64 * 1024

type client struct {
	http *http.Client
}

func newHTTPClient(requestTimeout time.Duration) *client {
	return &client{&http.Client{Timeout: requestTimeout}}
}

// deliver posts payload to endpoint. Any non-2xx reply is an error carrying
// the status and a truncated copy of the body.
func (c *client) deliver(
	ctx context.Context, endpoint, topic, bearer string, payload []byte,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Ramp-Topic", topic)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		//nolint
		io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseBody))
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	return fmt.Errorf("%s replied %d: %s", endpoint, res.StatusCode, body)
}
