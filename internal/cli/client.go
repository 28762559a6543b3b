package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nivobank/backoffice/internal/models"
)

// Client is a thin HTTP client for the back-office API, used by the ops CLI
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	return resp, nil
}

func decodeError(resp *http.Response, action string) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("failed to %s: %s (status: %d)", action, string(body), resp.StatusCode)
}

// ListRequests retrieves onboarding requests, optionally filtered by status
// code
func (c *Client) ListRequests(statusCode string, limit, offset int) (*models.RequestListResponse, error) {
	path := fmt.Sprintf("/api/v1/requests?limit=%d&offset=%d", limit, offset)
	if statusCode != "" {
		path += "&status=" + statusCode
	}

	resp, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "list requests")
	}

	var result models.RequestListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// GetRequest retrieves one onboarding request by ID
func (c *Client) GetRequest(id string) (*models.OnboardingRequest, error) {
	resp, err := c.doRequest("GET", "/api/v1/requests/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "get request")
	}

	var result models.OnboardingRequest
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// GetHistory retrieves a request's status ledger
func (c *Client) GetHistory(id string) (*models.HistoryListResponse, error) {
	resp, err := c.doRequest("GET", "/api/v1/requests/"+id+"/history?limit=100", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "get request history")
	}

	var result models.HistoryListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Transition moves a request to the target status
func (c *Client) Transition(id, targetStatusCode string, comment *string) (*models.OnboardingRequest, error) {
	body := models.TransitionRequest{
		TargetStatusCode: targetStatusCode,
		Comment:          comment,
	}

	resp, err := c.doRequest("POST", "/api/v1/requests/"+id+"/transition", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "transition request")
	}

	var result models.OnboardingRequest
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// ListStatuses retrieves the status catalog
func (c *Client) ListStatuses() (*models.StatusListResponse, error) {
	resp, err := c.doRequest("GET", "/api/v1/statuses", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "list statuses")
	}

	var result models.StatusListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API is not healthy (status: %d)", resp.StatusCode)
	}

	return nil
}
