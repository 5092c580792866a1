package assistant

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kirillkom/claimsense/internal/core/domain"
	"github.com/kirillkom/claimsense/internal/infrastructure/extraction"
	"github.com/kirillkom/claimsense/internal/infrastructure/resilience"
)

const chatOperation = "assistant.chat"

// ErrRemoteReply is returned when the backend answers with an {"error": ...} body.
var ErrRemoteReply = errors.New("assistant returned an error reply")

type Client struct {
	http     *resty.Client
	executor *resilience.Executor
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		executor: executor,
	}
}

type chatRequest struct {
	Message             string                   `json:"message"`
	Eligibility         bool                     `json:"eligibility"`
	Extracted           *extraction.WireDocument `json:"extracted"`
	Reason              string                   `json:"reason"`
	IsInitialMessage    bool                     `json:"isInitialMessage"`
	ConversationHistory string                   `json:"conversationHistory,omitempty"`
	MessageCount        int                      `json:"messageCount"`
}

type chatResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error"`
}

func (c *Client) Chat(ctx context.Context, req domain.AssistantRequest) (string, error) {
	payload := chatRequest{
		Message:             req.Message,
		Eligibility:         req.Eligible,
		Reason:              req.Reason,
		IsInitialMessage:    req.IsInitialMessage,
		ConversationHistory: req.ConversationHistory,
		MessageCount:        req.MessageCount,
	}
	if req.Document != nil {
		wire := extraction.FromDomain(*req.Document)
		payload.Extracted = &wire
	}

	var reply string
	err := c.executor.Do(ctx, chatOperation, func(ctx context.Context) error {
		var resp chatResponse
		if err := c.postJSON(ctx, "/chat", payload, &resp); err != nil {
			return err
		}
		if msg := strings.TrimSpace(resp.Error); msg != "" {
			return domain.WrapError(domain.ErrUpstream, chatOperation, errors.Join(ErrRemoteReply, errors.New(msg)))
		}
		reply = resp.Reply
		return nil
	}, classify)
	if err != nil {
		return "", wrapTemporaryIfNeeded(err)
	}
	return reply, nil
}

func classify(err error) resilience.Outcome {
	if errors.Is(err, context.Canceled) {
		return resilience.Outcome{}
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError && statusErr.StatusCode != http.StatusTooManyRequests {
		return resilience.Outcome{CountsAgainstBreaker: false}
	}
	return resilience.Outcome{Retryable: true, CountsAgainstBreaker: true}
}

func wrapTemporaryIfNeeded(err error) error {
	if domain.IsKind(err, domain.ErrTemporary) || errors.Is(err, context.Canceled) {
		return err
	}
	if resilience.IsCircuitOpen(err) || classify(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, chatOperation, err)
	}
	return err
}
