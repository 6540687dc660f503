package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/emotisense/emotisense/backend/internal/errs"
	"github.com/emotisense/emotisense/backend/internal/models"
)

// InferenceClient calls the emotion-detection ML service over HTTP.
type InferenceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInferenceClient(baseURL string, timeout time.Duration) *InferenceClient {
	return &InferenceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Detect posts the image as a multipart file to POST /detect and returns the
// classification results, zero or more per detected face.
func (c *InferenceClient) Detect(ctx context.Context, filename string, data []byte) ([]models.Detection, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("ml-service /detect: build form: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("ml-service /detect: build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("ml-service /detect: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", &buf)
	if err != nil {
		return nil, fmt.Errorf("ml-service /detect: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ml-service /detect: %w", errs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ml-service /detect returned %d: %s",
			errs.ErrUpstreamRejected, resp.StatusCode, string(body))
	}

	var result struct {
		Results []models.Detection `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: ml-service /detect: decode: %w", errs.ErrUpstreamRejected, err)
	}
	return result.Results, nil
}
