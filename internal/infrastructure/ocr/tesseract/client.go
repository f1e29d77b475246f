// Package tesseract is an HTTP client for a tesseract OCR sidecar. The
// sidecar exposes POST /recognize taking the image bytes and a language
// profile and returns the recognized plain text.
package tesseract

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

	"github.com/rmarchan/docuvault/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL string, exec *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
		exec:       exec,
	}
}

func (c *Client) RecognizeText(ctx context.Context, image []byte, languages string) (string, error) {
	var response struct {
		Text string `json:"text"`
	}

	call := func(ctx context.Context) error {
		return c.postImage(ctx, image, languages, &response)
	}

	var err error
	if c.exec != nil {
		err = c.exec.Execute(ctx, "ocr_recognize", call, classifyOCRError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("ocr_recognize", err)
	}
	return response.Text, nil
}

func (c *Client) postImage(ctx context.Context, image []byte, languages string, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("languages", languages); err != nil {
		return fmt.Errorf("write languages field: %w", err)
	}
	part, err := writer.CreateFormFile("image", "image")
	if err != nil {
		return fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("write image part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish recognize body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", bytes.NewReader(body.Bytes()))
	if err != nil {
		return fmt.Errorf("create recognize request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ocr recognize request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  "ocr_recognize",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode recognize response: %w", err)
	}
	return nil
}
