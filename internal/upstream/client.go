package upstream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

// userAgent identifies this proxy on every upstream call (§10.8).
const userAgent = "anthro-bridge/0.1.0"

// Client dispatches requests to an OpenAI-flavored upstream. It owns no
// credential state; each call is given the resolved key explicitly so a
// single Client can serve concurrent requests carrying different keys.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Timeout time.Duration
}

// New builds a Client with the given base URL and per-request timeout.
// Timeout defaults to 60s, per §4.2, when zero.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{},
		Timeout: timeout,
	}
}

// UpstreamError carries a non-2xx upstream response: status plus raw body,
// so the Proxy Server can forward it verbatim (§4.4 step 5) or inspect its
// JSON error message for the Chat→Responses fallback check (§4.4 step 3).
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// CombinedMessage extracts the error message from the body, preferring the
// nested {"error":{"message":...}} envelope over a bare {"message":...}.
func (e *UpstreamError) CombinedMessage() string {
	var body wire.UpstreamErrorBody
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return string(e.Body)
	}
	return body.CombinedMessage()
}

func (c *Client) do(ctx context.Context, method, url string, apiKey string, body []byte, stream bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dispatch upstream request: %w", err)
	}
	return resp, nil
}

// ChatCompletions issues a non-streaming Chat Completions call.
func (c *Client) ChatCompletions(ctx context.Context, apiKey string, body wire.ChatCompletionRequest) (*wire.ChatCompletionResponse, error) {
	var out wire.ChatCompletionResponse
	if err := c.dispatchJSON(ctx, apiKey, EndpointChatCompletions, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Responses issues a non-streaming Responses call.
func (c *Client) Responses(ctx context.Context, apiKey string, body wire.ResponsesRequest) (*wire.ResponsesResponse, error) {
	var out wire.ResponsesResponse
	if err := c.dispatchJSON(ctx, apiKey, EndpointResponses, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) dispatchJSON(ctx context.Context, apiKey string, endpoint Endpoint, in any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal upstream request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, BuildURL(c.BaseURL, endpoint), apiKey, payload, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Status: resp.StatusCode, Body: raw}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

// SSELines opens a streaming request and returns a function yielding each
// "data: <payload>" line's payload in order; the final call returns
// io.EOF once a "data: [DONE]" line is seen or the body is exhausted.
// The caller must call the returned closer when done (or on early exit).
func (c *Client) SSELines(ctx context.Context, apiKey string, endpoint Endpoint, in any) (next func() (string, error), closer func(), err error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal upstream request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, BuildURL(c.BaseURL, endpoint), apiKey, payload, true)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, nil, &UpstreamError{Status: resp.StatusCode, Body: raw}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	done := false
	next = func() (string, error) {
		if done {
			return "", io.EOF
		}
		for scanner.Scan() {
			line := scanner.Text()
			payload, ok := cutDataPrefix(line)
			if !ok {
				continue
			}
			if payload == "[DONE]" {
				done = true
				return "", io.EOF
			}
			return payload, nil
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		done = true
		return "", io.EOF
	}

	closer = func() { resp.Body.Close() }
	return next, closer, nil
}

func cutDataPrefix(line string) (string, bool) {
	const prefix = "data: "
	if len(line) < len(prefix) || line[:len(prefix)] != prefix {
		return "", false
	}
	return line[len(prefix):], true
}
