package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/plotline/plotline/internal/domain"
)

// ErrOwnerTaken means the nickname, or resources bound to the client id,
// already belong to someone else on the execution service.
var ErrOwnerTaken = errors.New("nickname or client resources already in use")

// AdminClient manages the caller's owner record on the execution service:
// the nickname alias and the workitem-signing public key.
type AdminClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     domain.CredentialSource
}

type AdminClientDependencies struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     domain.CredentialSource
}

func NewAdminClient(deps AdminClientDependencies) *AdminClient {
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &AdminClient{
		baseURL:    deps.BaseURL,
		httpClient: httpClient,
		tokens:     deps.Tokens,
	}
}

func (c *AdminClient) Nickname(ctx context.Context) (string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/owners/me/nickname", nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Nickname string `json:"nickname"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode nickname response: %w", err)
	}
	return resp.Nickname, nil
}

func (c *AdminClient) RegisterOwner(ctx context.Context, nickname, publicKey string) error {
	payload := map[string]string{
		"nickname":  nickname,
		"publicKey": publicKey,
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/owners/me/nickname", payload)
	return err
}

func (c *AdminClient) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var requestBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		requestBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	cred, err := c.tokens(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", cred.AuthorizationHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return nil, ErrOwnerTaken
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("execution service returned status %d: %s", resp.StatusCode, raw)
	}

	return raw, nil
}
