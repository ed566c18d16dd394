package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"garment-studio/models"
	"garment-studio/utils"
)

// DriveService handles Google Drive API operations
type DriveService struct {
	client *drive.Service
}

var _ DriveServiceInterface = (*DriveService)(nil)

// designMimeTypes are the Drive files offered as design candidates
var designMimeTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/svg+xml": true,
}

// NewDriveService creates a new DriveService instance.
// An empty credentialsPath uses Application Default Credentials.
func NewDriveService(ctx context.Context, credentialsPath string) (*DriveService, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	client, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveService{client: client}, nil
}

// DriveFileURL returns the public download link of a Drive file
func DriveFileURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/uc?id=%s", fileID)
}

// ListDesigns lists the image files of a folder whose names parse as designs
func (ds *DriveService) ListDesigns(ctx context.Context, folderID string) ([]models.Design, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))

	var allFiles []*drive.File
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType, createdTime)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		allFiles = append(allFiles, r.Files...)
		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}

	var designs []models.Design
	for _, file := range allFiles {
		if !designMimeTypes[strings.ToLower(file.MimeType)] {
			continue
		}
		parsed, err := utils.ParseDesignFileName(file.Name)
		if err != nil {
			zap.L().Warn("⚠️ Skipping Drive file with unexpected name", zap.String("name", file.Name), zap.Error(err))
			continue
		}
		parsed.DriveFileID = file.Id
		parsed.ImageURL = DriveFileURL(file.Id)
		parsed.Source = models.DesignSourceCatalog
		parsed.CreatedAt = file.CreatedTime
		designs = append(designs, *parsed)
	}
	return designs, nil
}

// DownloadFile returns the content of a Drive file
func (ds *DriveService) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := ds.client.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fileID, maxAssetBytes)
	}
	return data, nil
}

// UploadFile stores data as name inside folderID, replacing the content of an existing file
// with the same name. It returns the file id.
func (ds *DriveService) UploadFile(ctx context.Context, folderID, name, contentType string, data []byte) (string, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed=false", escapeQuery(name), escapeQuery(folderID))
	existing, err := ds.client.Files.List().Context(ctx).Q(query).Fields("files(id)").PageSize(1).Do()
	if err != nil {
		return "", fmt.Errorf("failed to look up %s: %w", name, err)
	}

	if len(existing.Files) > 0 {
		id := existing.Files[0].Id
		_, err := ds.client.Files.Update(id, &drive.File{}).
			Context(ctx).
			Media(bytes.NewReader(data)).
			Do()
		if err != nil {
			return "", fmt.Errorf("failed to update %s: %w", name, err)
		}
		return id, nil
	}

	file := &drive.File{
		Name:     name,
		MimeType: contentType,
		Parents:  []string{folderID},
	}
	created, err := ds.client.Files.Create(file).
		Context(ctx).
		Media(bytes.NewReader(data)).
		Fields("id").
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	return created.Id, nil
}

// driveFileName flattens a storage key into a single Drive file name
func driveFileName(key string) string {
	return strings.ReplaceAll(path.Clean(key), "/", "__")
}

func escapeQuery(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), `'`, `\'`)
}
