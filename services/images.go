package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/abstract-tutoring/card-crafter/utils"
)

const (
	maxImageBytes = 5 << 20
	// 16 Mpx decodes to at most 64 MiB of RGBA.
	maxImagePixels = 16 << 20
)

// ImageLoader turns uploads and remote URLs into embeddable data URIs.
type ImageLoader struct {
	client  *http.Client
	timeout time.Duration
}

// NewImageLoader uses client for remote images. A nil client gets one from
// NewPublicHTTPClient, which refuses loopback, private and link-local targets.
func NewImageLoader(client *http.Client, timeout time.Duration) *ImageLoader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if client == nil {
		client = NewPublicHTTPClient(timeout)
	}
	return &ImageLoader{client: client, timeout: timeout}
}

// FromUpload encodes an uploaded file as a data URI. Non-image content is rejected.
func (l *ImageLoader) FromUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header != nil && header.Size > maxImageBytes {
		return "", fmt.Errorf("image %s is larger than %d bytes", header.Filename, maxImageBytes)
	}
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return encodeImage(data)
}

// Resolve returns src as a data URI, downloading it first when it is an http(s) URL.
func (l *ImageLoader) Resolve(ctx context.Context, src string) (string, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		if _, _, err := DecodeDataURI(src); err != nil {
			return "", err
		}
		return src, nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetch(ctx, src)
	default:
		return "", fmt.Errorf("unsupported image source %q", utils.TruncateText(src, 40))
	}
}

// ResolveAll resolves each non-empty source one after another in list order.
// Failures are logged and left out of the result.
func (l *ImageLoader) ResolveAll(ctx context.Context, srcs []string) map[int]string {
	out := make(map[int]string)
	for i, src := range srcs {
		if src == "" {
			continue
		}
		uri, err := l.Resolve(ctx, src)
		if err != nil {
			log.Println("Error converting image to data URI:", err)
			continue
		}
		out[i] = uri
	}
	return out
}

func (l *ImageLoader) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image body: %w", err)
	}
	return encodeImage(data)
}

func encodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image is empty")
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image is larger than %d bytes", maxImageBytes)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("content type %s is not an image", mime)
	}
	if err := checkDimensions(data); err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// checkDimensions reads only the image header and rejects images that would
// decode to more than maxImagePixels. Formats with no registered decoder pass,
// since they are never decoded on the server.
func checkDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read image header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return fmt.Errorf("image is %dx%d, more than %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}
	return nil
}

// DecodeDataURI splits a base64 data URI into its mime type and payload.
func DecodeDataURI(src string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URI has no payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	return mime, data, nil
}
