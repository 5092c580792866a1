package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kirillkom/claimsense/internal/core/domain"
	"github.com/kirillkom/claimsense/internal/infrastructure/resilience"
)

const uploadOperation = "extraction.upload"

// Observer receives the outcome class of every upload, "ok" on success.
type Observer func(outcome string)

type Client struct {
	http     *resty.Client
	executor *resilience.Executor
	observe  Observer
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		executor: executor,
		observe:  func(string) {},
	}
}

func (c *Client) WithObserver(o Observer) *Client {
	if o != nil {
		c.observe = o
	}
	return c
}

// Extract uploads the image as multipart field "file" and maps the reply onto the domain document.
func (c *Client) Extract(ctx context.Context, filename, contentType string, body io.Reader) (*domain.ExtractedDocument, error) {
	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var wire WireDocument
	err = c.executor.Do(ctx, uploadOperation, func(ctx context.Context) error {
		var callErr error
		wire, callErr = c.upload(ctx, filename, contentType, payload)
		return callErr
	}, classify)
	if err != nil {
		if resilience.IsCircuitOpen(err) {
			err = &domain.ExtractionError{Failure: domain.ExtractionFailureNetwork, Detail: "extraction backend unavailable", Err: err}
		}
		var extractionErr *domain.ExtractionError
		if errors.As(err, &extractionErr) {
			c.observe(string(extractionErr.Failure))
		}
		return nil, err
	}

	c.observe("ok")
	doc := wire.ToDomain()
	return &doc, nil
}

func (c *Client) upload(ctx context.Context, filename, contentType string, payload []byte) (WireDocument, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("file", filename, contentType, bytes.NewReader(payload)).
		Post("/upload")
	if err != nil {
		return WireDocument{}, &domain.ExtractionError{Failure: domain.ExtractionFailureNetwork, Err: err}
	}

	var wire WireDocument
	decodeErr := json.Unmarshal(resp.Body(), &wire)

	if status := resp.StatusCode(); status >= http.StatusBadRequest {
		detail := strings.TrimSpace(wire.Error)
		if detail == "" {
			detail = truncate(strings.TrimSpace(string(resp.Body())), 256)
		}
		return WireDocument{}, &domain.ExtractionError{Failure: failureForStatus(status), StatusCode: status, Detail: detail}
	}
	if decodeErr != nil {
		return WireDocument{}, &domain.ExtractionError{
			Failure:    domain.ExtractionFailureServer,
			StatusCode: resp.StatusCode(),
			Detail:     "malformed response",
			Err:        fmt.Errorf("decode upload response: %w", decodeErr),
		}
	}
	if wire.hasError() {
		return WireDocument{}, &domain.ExtractionError{
			Failure:    domain.ExtractionFailureServer,
			StatusCode: resp.StatusCode(),
			Detail:     strings.TrimSpace(wire.Error),
		}
	}
	return wire, nil
}

func failureForStatus(status int) domain.ExtractionFailure {
	switch {
	case status >= http.StatusInternalServerError:
		return domain.ExtractionFailureServer
	case status == http.StatusRequestEntityTooLarge:
		return domain.ExtractionFailurePayloadTooLarge
	default:
		return domain.ExtractionFailureBadRequest
	}
}

func classify(err error) resilience.Outcome {
	var extractionErr *domain.ExtractionError
	if !errors.As(err, &extractionErr) {
		return resilience.Outcome{CountsAgainstBreaker: true}
	}
	switch extractionErr.Failure {
	case domain.ExtractionFailureNetwork:
		if errors.Is(err, context.Canceled) {
			return resilience.Outcome{}
		}
		return resilience.Outcome{Retryable: true, CountsAgainstBreaker: true}
	case domain.ExtractionFailureServer:
		return resilience.Outcome{Retryable: true, CountsAgainstBreaker: true}
	default:
		return resilience.Outcome{}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
