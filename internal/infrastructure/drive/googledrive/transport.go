package googledrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
)

func (s *Session) postJSON(ctx context.Context, endpoint string, payload, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out, operation)
}

func (s *Session) getJSON(ctx context.Context, endpoint string, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	return s.do(req, out, operation)
}

func (s *Session) delete(ctx context.Context, endpoint, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	return s.do(req, nil, operation)
}

// postMultipart streams a multipart/related upload: a JSON metadata part
// followed by the file bytes read from the staging path.
func (s *Session) postMultipart(ctx context.Context, endpoint string, metadata map[string]any, localPath, mimeType string, out any, operation string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open staged file for %s: %w", operation, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return fmt.Errorf("create %s metadata part: %w", operation, err)
	}
	if err := json.NewEncoder(metaPart).Encode(metadata); err != nil {
		return fmt.Errorf("encode %s metadata: %w", operation, err)
	}

	contentHeader := textproto.MIMEHeader{}
	if mimeType != "" {
		contentHeader.Set("Content-Type", mimeType)
	}
	contentPart, err := writer.CreatePart(contentHeader)
	if err != nil {
		return fmt.Errorf("create %s content part: %w", operation, err)
	}
	if _, err := io.Copy(contentPart, file); err != nil {
		return fmt.Errorf("copy staged file for %s: %w", operation, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body.Bytes()))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
	return s.do(req, out, operation)
}

func (s *Session) do(req *http.Request, out any, operation string) error {
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.factory.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("drive %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
