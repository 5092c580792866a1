package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "assistant status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("assistant chat status: %s", e.Status)
	}
	return fmt.Sprintf("assistant chat status: %s: %s", e.Status, strings.TrimSpace(e.Body))
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(path)
	if err != nil {
		return fmt.Errorf("assistant chat request: %w", err)
	}

	if resp.StatusCode() >= 300 {
		body := resp.Body()
		if len(body) > 2048 {
			body = body[:2048]
		}
		return &HTTPStatusError{StatusCode: resp.StatusCode(), Status: resp.Status(), Body: string(body)}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode chat response: %w", err)
	}
	return nil
}
