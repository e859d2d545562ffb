package converters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/geojson"
)

const (
	defaultRemoteTimeout = 60 * time.Second
	maxErrorBodyBytes    = 512
)

// RemoteConverter posts the OpenAir file to a conversion web service.
type RemoteConverter struct {
	endpoint   string
	tempDir    string
	httpClient *http.Client
}

// Compile-time check
var _ Converter = (*RemoteConverter)(nil)

func NewRemoteConverter(endpoint, tempDir string, timeout time.Duration) *RemoteConverter {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &RemoteConverter{
		endpoint: endpoint,
		tempDir:  tempDir,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *RemoteConverter) Name() string { return "remote" }

func (c *RemoteConverter) Convert(ctx context.Context, raw string) (*geojson.FeatureCollection, error) {
	log.Printf("Converting OpenAir file with %s", c.endpoint)

	var fc *geojson.FeatureCollection
	err := withTempFile(c.tempDir, raw, func(path string) error {
		body, contentType, err := buildUploadForm(path)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("post to conversion service: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(data, maxErrorBodyBytes))
		}

		fc, err = geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &ConversionError{Backend: c.Name(), Err: err}
	}

	log.Printf("Conversion service returned %d airspaces", len(fc.Features))
	return fc, nil
}

// buildUploadForm encodes the skipFailures flag and the file as multipart form data.
func buildUploadForm(path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open temporary file: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("skipFailures", "true"); err != nil {
		return nil, "", err
	}

	part, err := writer.CreateFormFile("upload", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy upload: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func truncate(data []byte, max int) string {
	if len(data) <= max {
		return string(data)
	}
	return string(data[:max]) + "..."
}
