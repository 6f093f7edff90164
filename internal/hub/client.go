// Package hub talks to the hierarchical document-management service and
// implements the create-or-version reconciliation that places a finished
// job's output into a folder.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/plotline/plotline/internal/domain"
)

// Error is a non-conflict rejection from the hierarchy service, carrying the
// decoded error envelope when one was present.
type Error struct {
	StatusCode int
	Errors     []domain.ErrorEntry
	Body       string
}

func (e *Error) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("hub: %s (status: %d)", e.Errors[0].Title, e.StatusCode)
	}
	return fmt.Sprintf("hub: request failed (status: %d)", e.StatusCode)
}

// Client is the document hierarchy HTTP client. Every request carries a user
// credential obtained lazily from the token source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     domain.CredentialSource
}

type ClientDependencies struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     domain.CredentialSource
}

func NewClient(deps ClientDependencies) *Client {
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    deps.BaseURL,
		httpClient: httpClient,
		tokens:     deps.Tokens,
	}
}

type resource struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	} `json:"attributes"`
}

type listResponse struct {
	Data []resource `json:"data"`
}

type singleResponse struct {
	Data resource `json:"data"`
}

type errorEnvelope struct {
	Errors []domain.ErrorEntry `json:"errors"`
}

func entryFromResource(r resource) domain.Entry {
	label := r.Attributes.DisplayName
	if label == "" {
		label = r.Attributes.Name
	}
	return domain.Entry{ID: r.ID, DisplayName: label, Kind: r.Type}
}

func (c *Client) ListHubs(ctx context.Context) ([]domain.Entry, error) {
	return c.list(ctx, "/hubs")
}

func (c *Client) ListProjects(ctx context.Context, hubID string) ([]domain.Entry, error) {
	return c.list(ctx, fmt.Sprintf("/hubs/%s/projects", url.PathEscape(hubID)))
}

func (c *Client) ListTopFolders(ctx context.Context, hubID, projectID string) ([]domain.Entry, error) {
	return c.list(ctx, fmt.Sprintf("/hubs/%s/projects/%s/topFolders", url.PathEscape(hubID), url.PathEscape(projectID)))
}

func (c *Client) ListFolderContents(ctx context.Context, projectID, folderID string) ([]domain.Entry, error) {
	return c.list(ctx, fmt.Sprintf("/projects/%s/folders/%s/contents", url.PathEscape(projectID), url.PathEscape(folderID)))
}

func (c *Client) ListItemVersions(ctx context.Context, projectID, itemID string) ([]domain.Entry, error) {
	return c.list(ctx, fmt.Sprintf("/projects/%s/items/%s/versions", url.PathEscape(projectID), url.PathEscape(itemID)))
}

func (c *Client) ListFolderItems(ctx context.Context, projectID, folderID string) ([]domain.DocumentItem, error) {
	path := fmt.Sprintf("/projects/%s/folders/%s/contents?%s",
		url.PathEscape(projectID), url.PathEscape(folderID),
		url.Values{
			"filter[type]":           {"items"},
			"filter[extension.type]": {"items:file"},
		}.Encode())

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode folder items: %w", err)
	}

	items := make([]domain.DocumentItem, 0, len(resp.Data))
	for _, r := range resp.Data {
		entry := entryFromResource(r)
		items = append(items, domain.DocumentItem{ID: entry.ID, DisplayName: entry.DisplayName})
	}
	return items, nil
}

type relationship struct {
	Data struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"data"`
}

func newRelationship(kind, id string) relationship {
	var rel relationship
	rel.Data.Type = kind
	rel.Data.ID = id
	return rel
}

func (c *Client) CreateItem(ctx context.Context, projectID, folderID, displayName string, ref domain.StorageObjectRef) (string, error) {
	payload := map[string]any{
		"data": map[string]any{
			"type":       "items",
			"attributes": map[string]string{"displayName": displayName},
			"relationships": map[string]any{
				"parent":  newRelationship("folders", folderID),
				"storage": newRelationship("objects", ref.String()),
			},
		},
	}

	body, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/projects/%s/items", url.PathEscape(projectID)), payload)
	if err != nil {
		return "", err
	}

	var resp singleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode created item: %w", err)
	}
	return resp.Data.ID, nil
}

func (c *Client) CreateVersion(ctx context.Context, projectID, itemID, displayName string, ref domain.StorageObjectRef) (string, error) {
	payload := map[string]any{
		"data": map[string]any{
			"type":       "versions",
			"attributes": map[string]string{"displayName": displayName},
			"relationships": map[string]any{
				"item":    newRelationship("items", itemID),
				"storage": newRelationship("objects", ref.String()),
			},
		},
	}

	body, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/projects/%s/versions", url.PathEscape(projectID)), payload)
	if err != nil {
		return "", err
	}

	var resp singleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode created version: %w", err)
	}
	return resp.Data.ID, nil
}

func (c *Client) list(ctx context.Context, path string) ([]domain.Entry, error) {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	entries := make([]domain.Entry, 0, len(resp.Data))
	for _, r := range resp.Data {
		entries = append(entries, entryFromResource(r))
	}
	return entries, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
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
	req.Header.Set("Content-Type", "application/vnd.api+json")

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

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	return raw, nil
}

// decodeError maps an error response to either the conflict signal the
// reconciler branches on, or a plain *Error.
func decodeError(statusCode int, body []byte) error {
	var envelope errorEnvelope
	json.Unmarshal(body, &envelope)

	if statusCode == http.StatusConflict {
		return &domain.ConflictError{Errors: envelope.Errors}
	}
	for _, entry := range envelope.Errors {
		if entry.Status == "409" {
			return &domain.ConflictError{Errors: envelope.Errors}
		}
	}

	return &Error{
		StatusCode: statusCode,
		Errors:     envelope.Errors,
		Body:       string(body),
	}
}
