package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shiftplane/pkg/api"
)

// ShiftClient handles API calls to the shiftplane controller.
type ShiftClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewShiftClient creates a new client for the given base URL.
func NewShiftClient(baseURL string) *ShiftClient {
	return &ShiftClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// CreateJob sends POST /jobs.
func (c *ShiftClient) CreateJob(req api.CreateJobRequest) (*api.CreateJobResponse, error) {
	var result api.CreateJobResponse
	if err := c.do(http.MethodPost, "/jobs", req, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListShifts sends GET /jobs/{id}/shifts.
func (c *ShiftClient) ListShifts(jobID string) ([]api.ShiftResponse, error) {
	var result api.GetShiftsResponse
	if err := c.do(http.MethodGet, "/jobs/"+jobID+"/shifts", nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return result.Shifts, nil
}

// CancelJob sends DELETE /jobs/{id}.
func (c *ShiftClient) CancelJob(jobID string) error {
	return c.do(http.MethodDelete, "/jobs/"+jobID, nil, nil, http.StatusNoContent)
}

// CancelShift sends DELETE /shifts/{id}.
func (c *ShiftClient) CancelShift(shiftID string) error {
	return c.do(http.MethodDelete, "/shifts/"+shiftID, nil, nil, http.StatusNoContent)
}

// BookTalent sends PATCH /shifts/{id}/book.
func (c *ShiftClient) BookTalent(shiftID, talentID string) error {
	return c.do(http.MethodPatch, "/shifts/"+shiftID+"/book", api.BookTalentRequest{Talent: talentID}, nil, http.StatusNoContent)
}

// CancelTalentShifts sends DELETE /talents/{id}/shifts.
func (c *ShiftClient) CancelTalentShifts(talentID string) error {
	return c.do(http.MethodDelete, "/talents/"+talentID+"/shifts", nil, nil, http.StatusNoContent)
}

// do sends one request and decodes the response into out when it is non-nil.
func (c *ShiftClient) do(method, path string, body, out interface{}, want int) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Errors) > 0 {
		return &APIError{StatusCode: status, Messages: errResp.Messages()}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Messages: []string{msg}}
}
