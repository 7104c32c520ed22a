package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultCompileTimeout bounds a single compile call when the caller's
// context carries no deadline of its own.
const DefaultCompileTimeout = 5 * time.Minute

// HTTPCompiler submits requests to a remote compile service and streams the
// produced artifact to a local temp file.
type HTTPCompiler struct {
	// BaseURL is the service root; the compile endpoint is BaseURL + "/v1/compile".
	BaseURL string
	// Client defaults to an http.Client with DefaultCompileTimeout.
	Client *http.Client
}

// NewHTTPCompiler creates a compiler client for the given service URL.
func NewHTTPCompiler(baseURL string) *HTTPCompiler {
	return &HTTPCompiler{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: DefaultCompileTimeout},
	}
}

// errorResponse is the service's diagnostic body for rejected requests.
type errorResponse struct {
	Error string `json:"error"`
}

// Compile POSTs the request as JSON and writes the binary response to a temp
// file, returning its path. A 4xx status is a compiler rejection and yields a
// *BuildError; other failures are transport or disk errors.
func (hc *HTTPCompiler) Compile(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode compile request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, hc.BaseURL+"/v1/compile", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create compile request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/octet-stream")

	client := hc.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultCompileTimeout}
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("compile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
			er.Error = resp.Status
		}
		return "", &BuildError{Msg: er.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("compile service returned status: %s", resp.Status)
	}

	out, err := os.CreateTemp("", "speechcorpus-artifact-*")
	if err != nil {
		return "", fmt.Errorf("create artifact temp file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("close artifact: %w", err)
	}
	return out.Name(), nil
}
