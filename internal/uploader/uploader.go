// Package uploader talks to the external media host that stores post images.
// The collaborator contract is: raw image bytes in, a stable (asset id, URL)
// pair out. Nothing in this package persists anything locally.
package uploader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	// Registered for payload validation via image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"mosaic/internal/observability"

	"github.com/google/uuid"
)

// Asset identifies an uploaded image on the media host.
type Asset struct {
	AssetID string `json:"asset_id"`
	URL     string `json:"url"`
}

// Uploader is the upload collaborator consumed by the post service.
type Uploader interface {
	Upload(ctx context.Context, payload []byte) (*Asset, error)
}

// MediaHost is the HTTP implementation of Uploader.
type MediaHost struct {
	baseURL string
	preset  string
	client  *http.Client
}

// NewMediaHost returns an Uploader backed by the media host at baseURL.
func NewMediaHost(baseURL, preset string) *MediaHost {
	return &MediaHost{
		baseURL: strings.TrimRight(baseURL, "/"),
		preset:  preset,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload validates the payload as a decodable image and posts it to the
// media host. The host answers with the asset id and public URL.
func (m *MediaHost) Upload(ctx context.Context, payload []byte) (*Asset, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(payload)); err != nil {
		return nil, fmt.Errorf("payload is not a decodable image: %w", err)
	} else if format == "" {
		return nil, fmt.Errorf("unknown image format")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/upload", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Upload-Preset", m.preset)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := m.client.Do(req)
	if err != nil {
		observability.UploadFailures.Inc()
		return nil, fmt.Errorf("media host unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		observability.UploadFailures.Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("media host returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		observability.UploadFailures.Inc()
		return nil, fmt.Errorf("invalid media host response: %w", err)
	}
	if asset.AssetID == "" || asset.URL == "" {
		observability.UploadFailures.Inc()
		return nil, fmt.Errorf("media host response missing asset id or url")
	}
	return &asset, nil
}

// UploadAll uploads every payload concurrently and returns the assets in
// input order. Any single failure fails the whole batch; nothing is rolled
// back on the host (orphaned assets are garbage-collected there).
func UploadAll(ctx context.Context, u Uploader, payloads [][]byte) ([]Asset, error) {
	assets := make([]Asset, len(payloads))
	errs := make([]error, len(payloads))

	var wg sync.WaitGroup
	for i, payload := range payloads {
		wg.Add(1)
		go func(i int, payload []byte) {
			defer wg.Done()
			asset, err := u.Upload(ctx, payload)
			if err != nil {
				errs[i] = err
				return
			}
			assets[i] = *asset
		}(i, payload)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
	}
	return assets, nil
}

// DecodePayload turns a client-submitted image string (a base64 data URL or
// bare base64) into raw bytes.
func DecodePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty image payload")
	}
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		meta := s[:idx]
		s = s[idx+1:]
		if !strings.Contains(meta, ";base64") {
			return nil, fmt.Errorf("data URL must be base64 encoded")
		}
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return raw, nil
}
