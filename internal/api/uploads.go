package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/iksnae/quest-log/internal"
)

// ImportResult is the backend's answer to an import or upload. Processing
// continues in the background; poll the session to follow it.
type ImportResult struct {
	SessionID int                       `json:"session_id"`
	Status    internal.ProcessingStatus `json:"status"`
	FileCount int                       `json:"file_count,omitempty"`
}

type textImportRequest struct {
	Name       string `json:"name"`
	Content    string `json:"content"`
	CampaignID int    `json:"campaign_id"`
}

type localImportRequest struct {
	Name       string   `json:"name"`
	CampaignID int      `json:"campaign_id"`
	FilePaths  []string `json:"file_paths"`
}

// ImportText creates a session from a pasted transcript
func (c *Client) ImportText(ctx context.Context, campaignID int, name, content string) (*ImportResult, error) {
	var result ImportResult
	body := textImportRequest{Name: name, Content: content, CampaignID: campaignID}
	if err := c.do(ctx, http.MethodPost, "/import_session_text/", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ImportLocal creates a session from files that already live on the
// backend's filesystem
func (c *Client) ImportLocal(ctx context.Context, campaignID int, name string, paths []string) (*ImportResult, error) {
	var result ImportResult
	body := localImportRequest{Name: name, CampaignID: campaignID, FilePaths: paths}
	if err := c.do(ctx, http.MethodPost, "/import_local_session/", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadSession creates a session by uploading local audio files
func (c *Client) UploadSession(ctx context.Context, campaignID int, name string, paths []string) (*ImportResult, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("campaign_id", strconv.Itoa(campaignID))
	return c.upload(ctx, "/upload_session/", query, paths)
}

// ReuploadSession replaces the audio of an existing session and restarts
// processing
func (c *Client) ReuploadSession(ctx context.Context, sessionID int, paths []string) (*ImportResult, error) {
	return c.upload(ctx, fmt.Sprintf("/reupload_session/%d", sessionID), nil, paths)
}

// upload streams paths as multipart "files" parts using the upload client
func (c *Client) upload(ctx context.Context, path string, query url.Values, paths []string) (*ImportResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("upload %s: no files given", path)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("upload %s: %w", path, err)
		}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeParts(mw, paths))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, path, query, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result ImportResult
	if err := c.send(c.uploadClient, req, &result); err != nil {
		pr.Close()
		return nil, err
	}
	return &result, nil
}

func writeParts(mw *multipart.Writer, paths []string) error {
	for _, p := range paths {
		if err := writePart(mw, p); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writePart(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to stream %s: %w", path, err)
	}
	internal.LogDebug("streamed %s", path)
	return nil
}
