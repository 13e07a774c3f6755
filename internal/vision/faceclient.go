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

// FaceClient calls the face recognition microservice over HTTP.
// It implements Detector and Comparer.
type FaceClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewFaceClient builds a client for the given base URL.
func NewFaceClient(baseURL string) *FaceClient {
	return &FaceClient{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // face processing can take time
		},
	}
}

// DetectFaces submits an image and returns the detected face descriptors.
func (c *FaceClient) DetectFaces(ctx context.Context, image []byte) ([]FaceDescriptor, error) {
	payload := map[string]string{
		"image_data": base64.StdEncoding.EncodeToString(image),
	}

	var out struct {
		Faces []FaceDescriptor `json:"faces"`
	}
	if err := c.post(ctx, "/detect", payload, &out); err != nil {
		return nil, err
	}
	return out.Faces, nil
}

// CompareFaces compares a source image against a target image and returns
// matches at or above threshold.
func (c *FaceClient) CompareFaces(ctx context.Context, source, target []byte, threshold float64) ([]ComparisonMatch, error) {
	payload := map[string]interface{}{
		"source_image":         base64.StdEncoding.EncodeToString(source),
		"target_image":         base64.StdEncoding.EncodeToString(target),
		"similarity_threshold": threshold,
	}

	var out struct {
		Matches []ComparisonMatch `json:"matches"`
	}
	if err := c.post(ctx, "/compare", payload, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}

func (c *FaceClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("face service error %s: %s", resp.Status, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
