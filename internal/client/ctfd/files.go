package ctfd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/otherjamesbrown/ctfd-admin/internal/client"
)

// FileTypeChallenge attaches an uploaded file to a challenge.
const FileTypeChallenge = "challenge"

// UploadFile attaches the file at filePath to a challenge.
func (s *Session) UploadFile(ctx context.Context, challengeID int, filePath string) (*Response, error) {
	const op = "upload file"
	endpoint := s.endpoint("files", nil)

	f, err := os.Open(filePath)
	if err != nil {
		return nil, &client.TransportError{Op: op, URL: endpoint, Err: fmt.Errorf("open file: %w", err)}
	}
	defer f.Close()

	var buf bytes.Buffer
	m := multipart.NewWriter(&buf)

	if err := m.WriteField("challenge_id", strconv.Itoa(challengeID)); err != nil {
		return nil, &client.TransportError{Op: op, URL: endpoint, Err: err}
	}
	if err := m.WriteField("type", FileTypeChallenge); err != nil {
		return nil, &client.TransportError{Op: op, URL: endpoint, Err: err}
	}

	part, err := m.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, &client.TransportError{Op: op, URL: endpoint, Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, &client.TransportError{Op: op, URL: endpoint, Err: fmt.Errorf("read file: %w", err)}
	}
	if err := m.Close(); err != nil {
		return nil, &client.TransportError{Op: op, URL: endpoint, Err: err}
	}

	req, err := s.newRequest(ctx, http.MethodPost, endpoint, &buf, m.FormDataContentType())
	if err != nil {
		return nil, &client.TransportError{Op: op, URL: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	return s.send(ctx, op, req)
}
