package supabase

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
	"interior-design-backend/internal/models"
)

// ObjectClient is the subset of the storage-go client the image store uses.
type ObjectClient interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
	DownloadFile(bucketID, filePath string, urlOptions ...storage.UrlOptions) ([]byte, error)
	ListFiles(bucketID, queryPath string, options storage.FileSearchOptions) ([]storage.FileObject, error)
	RemoveFile(bucketID string, paths []string) ([]storage.FileUploadResponse, error)
}

// ImageStore keeps image bytes in a Supabase Storage bucket under
// users/{user}/projects/{project}/{name}.
type ImageStore struct {
	client  ObjectClient
	bucket  string
	baseURL string
}

func NewImageStore(client ObjectClient, supabaseURL, bucket string) *ImageStore {
	return &ImageStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(supabaseURL, "/"),
	}
}

func projectPrefix(userID string, projectID uuid.UUID) string {
	return fmt.Sprintf("users/%s/projects/%s/", userID, projectID.String())
}

// Save uploads img and returns it with StoragePath and URL set. Data is kept.
func (s *ImageStore) Save(userID string, projectID uuid.UUID, name string, img models.ImagePayload) (models.ImagePayload, error) {
	if !img.Present() {
		return img, fmt.Errorf("failed to upload %s: image has no data", name)
	}

	storagePath := projectPrefix(userID, projectID) + name + "." + img.Extension()
	contentType := img.MimeType
	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(img.Data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return img, fmt.Errorf("failed to upload file: %w", err)
	}

	img.StoragePath = storagePath
	img.URL = s.PublicURL(storagePath)
	return img, nil
}

// Load fills in Data for a stored payload. Payloads already holding bytes are returned as is.
func (s *ImageStore) Load(img models.ImagePayload) (models.ImagePayload, error) {
	if img.Present() || !img.Stored() {
		return img, nil
	}

	data, err := s.client.DownloadFile(s.bucket, img.StoragePath)
	if err != nil {
		return img, fmt.Errorf("failed to download file: %w", err)
	}
	img.Data = data
	return img, nil
}

func (s *ImageStore) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
}

func (s *ImageStore) Delete(storagePath string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{storagePath})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DeleteProject removes every object stored for a project.
func (s *ImageStore) DeleteProject(userID string, projectID uuid.UUID) error {
	prefix := projectPrefix(userID, projectID)

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		return nil
	}

	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = prefix + file.Name
	}
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}
