package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/itops/staffdesk/pkg/api"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/output"
	"github.com/itops/staffdesk/pkg/policy"
)

var photoExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// PhotoCheck is the result of matching local files against the roster.
type PhotoCheck struct {
	Matched   []string `json:"matched"`
	Unmatched []string `json:"unmatched"`
	// Unsupported lists files whose extension is not an image type.
	Unsupported []string `json:"unsupported"`
}

// CheckPhotos classifies paths. A photo matches when its file name without
// extension is the id of an employee in the roster.
func CheckPhotos(paths []string, roster interface {
	Lookup(id string) (api.Employee, bool)
}) PhotoCheck {
	var c PhotoCheck
	for _, p := range paths {
		base := filepath.Base(p)
		ext := strings.ToLower(filepath.Ext(base))
		if !photoExtensions[ext] {
			c.Unsupported = append(c.Unsupported, p)
			continue
		}
		if _, ok := roster.Lookup(strings.TrimSuffix(base, filepath.Ext(base))); !ok {
			c.Unmatched = append(c.Unmatched, p)
			continue
		}
		c.Matched = append(c.Matched, p)
	}
	return c
}

// PhotoService uploads and syncs employee photos
type PhotoService struct {
	app *App
}

// NewPhotoService creates a photo service
func NewPhotoService(app *App) *PhotoService {
	return &PhotoService{app: app}
}

// Upload sends every matching file in paths. Files that match no employee
// are reported and left out; nothing is sent when no file matches.
func (s *PhotoService) Upload(ctx context.Context, paths []string) (*api.UploadResult, error) {
	if err := s.app.Require(policy.CapManageHRData); err != nil {
		return nil, err
	}
	if _, _, err := roster(s.app.Context(ctx), false); err != nil {
		return nil, err
	}

	check := CheckPhotos(paths, s.app.Employees)
	for _, p := range check.Unsupported {
		output.PrintWarning("Skipping %s: only jpg, jpeg and png are accepted", p)
	}
	for _, p := range check.Unmatched {
		output.PrintWarning("Skipping %s: no employee with that id", p)
	}
	if len(check.Matched) == 0 {
		return nil, apperrors.BusinessError("No photo matches an employee id", "Name each file after the employee id, e.g. E001.jpg")
	}

	files := make([]api.PhotoFile, 0, len(check.Matched))
	for _, p := range check.Matched {
		f, err := os.Open(p)
		if err != nil {
			closeAll(files)
			return nil, fmt.Errorf("failed to open %s: %w", p, err)
		}
		files = append(files, api.PhotoFile{Name: filepath.Base(p), Reader: f})
	}
	defer closeAll(files)

	logger.Info("Uploading photos", "count", len(files), "unmatched", len(check.Unmatched))
	res, err := s.app.API.UploadPhotos(ctx, files)
	if err != nil {
		return nil, err
	}
	output.PrintSuccess("Uploaded %d photo%s", len(res.Uploaded), pluralize(len(res.Uploaded)))
	if len(res.Skipped) > 0 {
		output.PrintWarning("Server skipped: %s", strings.Join(res.Skipped, ", "))
	}
	return res, nil
}

func closeAll(files []api.PhotoFile) {
	for _, f := range files {
		if c, ok := f.Reader.(*os.File); ok {
			c.Close()
		}
	}
}

// Sync asks the backend to import photos from the legacy store.
func (s *PhotoService) Sync(ctx context.Context) error {
	if err := s.app.Require(policy.CapSystemAdmin); err != nil {
		return err
	}
	res, err := s.app.API.SyncOldPhotos(ctx)
	if err != nil {
		return err
	}
	output.PrintSuccess("Synced %d photo%s", res.Synced, pluralize(res.Synced))
	return nil
}
