package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	bearer  string
	http    *http.Client
}

func NewClient(baseURL, bearer string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bearer:  bearer,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type validateRequest struct {
	LicenseJWT        string `json:"license_jwt"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

type validateResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// Validate asks the server for the authoritative answer, which includes
// revocation and the license row's active flag.
func (c *Client) Validate(ctx context.Context, licenseJWT, fp string) (string, error) {
	body, err := json.Marshal(validateRequest{LicenseJWT: licenseJWT, DeviceFingerprint: fp})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/licenses/validate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server rejected license (status %d, %s): %s", resp.StatusCode, out.Code, out.Error)
	}
	return out.Message, nil
}
