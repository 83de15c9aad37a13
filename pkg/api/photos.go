package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/itops/staffdesk/pkg/client"
	"github.com/itops/staffdesk/pkg/logger"
)

// DownloadZip requests a ZIP of the photos of the given employees
func (a *API) DownloadZip(ctx context.Context, employeeIDs []string) ([]byte, error) {
	logger.Debug("Requesting photo archive", "count", len(employeeIDs))

	resp, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPost,
		Path:   "/download-zip",
		Body:   map[string][]string{"employee_ids": employeeIDs},
	})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// DownloadPhoto fetches one employee photo. A missing photo is normal, so the
// caller gets a not_found error without any alert.
func (a *API) DownloadPhoto(ctx context.Context, employeeID string) ([]byte, error) {
	resp, err := a.c.Do(ctx, client.Call{
		Method: http.MethodGet,
		Path:   "/download/" + url.PathEscape(employeeID),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// PhotoFile is one file to upload
type PhotoFile struct {
	Name   string
	Reader io.Reader
}

// UploadPhotos uploads photo files named after employee ids
func (a *API) UploadPhotos(ctx context.Context, files []PhotoFile) (*UploadResult, error) {
	logger.Debug("Uploading photos", "count", len(files))

	parts := make([]client.File, 0, len(files))
	for _, f := range files {
		parts = append(parts, client.File{Param: "files", Name: f.Name, Reader: f.Reader})
	}

	var result UploadResult
	if _, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPost,
		Path:   "/upload",
		Files:  parts,
		Result: &result,
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// SyncOldPhotos asks the backend to import photos from the legacy share
func (a *API) SyncOldPhotos(ctx context.Context) (*SyncResult, error) {
	var result SyncResult
	if _, err := a.c.Do(ctx, client.Call{
		Method: http.MethodPost,
		Path:   "/sync-old-photos",
		Result: &result,
	}); err != nil {
		return nil, err
	}
	return &result, nil
}
