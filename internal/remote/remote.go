package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/service"
	"github.com/MrSnakeDoc/plugup/internal/utils"
)

// maxBody caps how much of a metadata response is read.
const maxBody = 4 << 20

type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs single-attempt GETs against GitHub metadata endpoints.
type Client struct {
	HTTP service.HTTPClient
}

func New(client service.HTTPClient) *Client {
	return &Client{HTTP: client}
}

// Fetch returns the body of a 2xx response. Anything else, including a
// non-https URL, is a transport error.
func (c *Client) Fetch(ctx context.Context, url string) (*RawResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.TransportError("fetch", err)
	}

	parsedURL, err := utils.ParseSecureURL(url)
	if err != nil {
		logger.Debug("Failed to parse URL: %v", err)
		return nil, errs.TransportError("fetch", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), http.NoBody)
	if err != nil {
		return nil, errs.TransportError("fetch", fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		logger.Debug("Failed to perform request: %v", err)
		return nil, errs.TransportError("fetch", fmt.Errorf("failed to perform request: %w", err))
	}
	defer utils.Try(resp.Body.Close)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug("Received non-2xx response from %s: %d", parsedURL.Host, resp.StatusCode)
		return nil, errs.TransportError("fetch", fmt.Errorf("non-2xx response: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errs.TransportError("fetch", fmt.Errorf("failed to read body: %w", err))
	}

	return &RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	resp, err := c.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}
