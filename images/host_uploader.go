package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/jrsteele09/localchef-bazaar/gateway"
)

var _ Uploader = (*HostUploader)(nil)

// HostUploader posts images to an imgbb-compatible upload API
type HostUploader struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type HostUploaderOption func(*HostUploader)

func WithHTTPClient(hc *http.Client) HostUploaderOption {
	return func(h *HostUploader) {
		h.httpClient = hc
	}
}

func NewHostUploader(endpoint, apiKey string, opts ...HostUploaderOption) (*HostUploader, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("[NewHostUploader] endpoint is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("[NewHostUploader] API key is required")
	}
	h := &HostUploader{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type hostResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Success bool `json:"success"`
}

// Upload sends content as the "image" form field and returns the display URL
func (h *HostUploader) Upload(ctx context.Context, key string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", path.Base(key))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	u, err := url.Parse(h.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse upload endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", h.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if err := gateway.CheckError(resp); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	var out hostResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.Data.DisplayURL != "" {
		return out.Data.DisplayURL, nil
	}
	if out.Data.URL != "" {
		return out.Data.URL, nil
	}
	return "", fmt.Errorf("upload image: response has no URL")
}
