package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	MessageSuccess = "Thank you for sharing your feedback! 💚"
	MessageFailure = "Something went wrong. Please try again!"
)

// Client posts rating payloads to an opaque endpoint. The endpoint's response
// is never inspected: any status counts as delivered, matching a browser
// post made without CORS access to the reply.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Submit sends payload once. There is no retry; a transport failure is
// returned wrapping ErrNetworkFailure.
func (c *Client) Submit(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal feedback")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to create feedback request", goerr.V("endpoint", c.endpoint))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return goerr.Wrap(errors.Join(ErrNetworkFailure, err), "failed to post feedback", goerr.V("endpoint", c.endpoint))
	}
	_ = resp.Body.Close()

	c.logger.Info("feedback submitted", "endpoint", c.endpoint, "dishes", len(payload), "status", resp.StatusCode)
	return nil
}

// UserMessage is the line shown to the visitor after a submission attempt.
func UserMessage(err error) string {
	if err != nil {
		return MessageFailure
	}
	return MessageSuccess
}
