// Package ai wraps the generative backend behind a small fallible contract.
// Every call enforces a per-attempt timeout and at most one retry; timeouts,
// empty output, and malformed structured output all surface as *BackendError
// so call sites can apply their deterministic fallbacks uniformly.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Generator is the capability the orchestration core depends on. The concrete
// Client implements it over an eino chain; tests substitute scripted stubs.
type Generator interface {
	Generate(ctx context.Context, system, query string) (string, error)
	GenerateStructured(ctx context.Context, system, query string, out any) error
}

// Failure reasons carried by BackendError.
const (
	FailureTimeout     = "timeout"
	FailureEmpty       = "empty_output"
	FailureMalformed   = "malformed_output"
	FailureUpstream    = "upstream"
	FailureUnavailable = "unavailable"
)

// BackendError is the typed failure for any generative-backend fault. It is
// never shown to end users; callers fall back to deterministic content.
type BackendError struct {
	Reason string
	Err    error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend failure (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("backend failure (%s)", e.Reason)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsBackendFailure reports whether err is a typed backend failure.
func IsBackendFailure(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

const maxAttempts = 2 // one retry

// Options tune the client.
type Options struct {
	Timeout time.Duration
}

// Client runs prompts through a compiled eino chain.
type Client struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewClient compiles the generation chain once against the supplied model.
func NewClient(ctx context.Context, chatModel model.ChatModel, opts Options) (*Client, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{chain: runnable, timeout: timeout}, nil
}

// Generate runs one prompt and returns the raw text output.
func (c *Client) Generate(ctx context.Context, system, query string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := c.invoke(ctx, system, query)
		if err == nil {
			return text, nil
		}
		lastErr = err
		// The caller's own context ending is not worth a retry.
		if ctx.Err() != nil {
			break
		}
		log.Printf("[ai] generate attempt %d failed: %v", attempt+1, err)
	}
	return "", lastErr
}

// GenerateStructured runs one prompt and decodes the JSON object embedded in
// the output into out. Any structural violation is a malformed-output
// BackendError, never a silent default.
func (c *Client) GenerateStructured(ctx context.Context, system, query string, out any) error {
	text, err := c.Generate(ctx, system, query)
	if err != nil {
		return err
	}
	return DecodeStructured(text, out)
}

func (c *Client) invoke(ctx context.Context, system, query string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.chain.Invoke(attemptCtx, map[string]any{
		"system": system,
		"query":  query,
	})
	if err != nil {
		reason := FailureUpstream
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			reason = FailureTimeout
		}
		return "", &BackendError{Reason: reason, Err: err}
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", &BackendError{Reason: FailureEmpty}
	}
	return msg.Content, nil
}

// DecodeStructured extracts the first JSON object from model output and
// unmarshals it into out. Models wrap JSON in prose often enough that the
// brace scan is the dependable path.
func DecodeStructured(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return &BackendError{Reason: FailureMalformed, Err: errors.New("missing json object")}
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), out); err != nil {
		return &BackendError{Reason: FailureMalformed, Err: err}
	}
	return nil
}

// Unavailable is the Generator used when no backend is configured; every call
// fails with a typed error so the deterministic fallbacks drive the whole
// interview.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string, string) (string, error) {
	return "", &BackendError{Reason: FailureUnavailable}
}

func (Unavailable) GenerateStructured(context.Context, string, string, any) error {
	return &BackendError{Reason: FailureUnavailable}
}
