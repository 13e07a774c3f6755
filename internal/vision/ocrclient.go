package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OCRClient calls the text extraction microservice. It implements Extractor.
type OCRClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewOCRClient builds a client for the given base URL.
func NewOCRClient(baseURL string) *OCRClient {
	return &OCRClient{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ExtractLines returns the text lines recognized in the image, in reading
// order as reported by the service.
func (c *OCRClient) ExtractLines(ctx context.Context, image []byte) ([]string, error) {
	body, err := json.Marshal(map[string]string{
		"image_data": base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ocr service error %s: %s", resp.Status, string(respBody))
	}

	var out struct {
		Lines []string `json:"lines"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Lines, nil
}
