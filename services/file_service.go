package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path"

	appConfig "github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/utils"
)

// StoredFile describes where an uploaded file ended up
type StoredFile struct {
	Key      string // storage key used to build URLs and delete the file
	Filename string // generated file name, without folder
	MimeType string
	Size     int64
}

// FileStorage handles attachment upload, retrieval, and deletion
type FileStorage interface {
	// Store validates and saves a file under folder (e.g. "orders/12")
	Store(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*StoredFile, error)

	// URL returns a download URL for a stored file
	URL(ctx context.Context, key string) (string, error)

	// Delete removes a stored file
	Delete(ctx context.Context, key string) error
}

var fileStorageInstance FileStorage

// InitFileStorage picks S3 when a bucket is configured and local disk otherwise
func InitFileStorage(ctx context.Context, cfg *appConfig.Config) (FileStorage, error) {
	if cfg.UsesS3() {
		s3Service, err := NewS3Service(ctx, cfg)
		if err != nil {
			return nil, err
		}
		fileStorageInstance = NewS3FileStorage(s3Service)
		return fileStorageInstance, nil
	}

	fileStorageInstance = NewLocalFileStorage(cfg.UploadDir)
	return fileStorageInstance, nil
}

// GetFileStorage returns the initialized file storage
func GetFileStorage() FileStorage {
	return fileStorageInstance
}

// SetFileStorage sets the file storage instance (primarily for testing)
func SetFileStorage(storage FileStorage) {
	fileStorageInstance = storage
}

// S3FileStorage implements FileStorage using AWS S3
type S3FileStorage struct {
	s3Service S3Interface
}

// NewS3FileStorage wraps an S3 client
func NewS3FileStorage(s3Service S3Interface) *S3FileStorage {
	return &S3FileStorage{s3Service: s3Service}
}

// Store validates and uploads a file to S3
func (s *S3FileStorage) Store(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*StoredFile, error) {
	if err := utils.ValidateUploadFile(fileHeader); err != nil {
		return nil, err
	}

	key, err := s.s3Service.UploadFile(ctx, fileHeader, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	return &StoredFile{
		Key:      key,
		Filename: path.Base(key),
		MimeType: utils.DetectMimeType(fileHeader.Filename),
		Size:     fileHeader.Size,
	}, nil
}

// URL generates a presigned URL
func (s *S3FileStorage) URL(ctx context.Context, key string) (string, error) {
	url, err := s.s3Service.GetPresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate file URL: %w", err)
	}
	return url, nil
}

// Delete deletes a file from S3
func (s *S3FileStorage) Delete(ctx context.Context, key string) error {
	if err := s.s3Service.DeleteFile(ctx, key); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// LocalFileStorage implements FileStorage on the local filesystem, served from /api/v1/uploads
type LocalFileStorage struct {
	dir string
}

// NewLocalFileStorage stores files in dir
func NewLocalFileStorage(dir string) *LocalFileStorage {
	return &LocalFileStorage{dir: dir}
}

// Dir is the directory files are written to
func (s *LocalFileStorage) Dir() string {
	return s.dir
}

// Store validates and writes a file to disk. Folders are not used on disk.
func (s *LocalFileStorage) Store(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*StoredFile, error) {
	if err := utils.ValidateUploadFile(fileHeader); err != nil {
		return nil, err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.dir)
	if err != nil {
		return nil, err
	}

	return &StoredFile{
		Key:      filename,
		Filename: filename,
		MimeType: utils.DetectMimeType(fileHeader.Filename),
		Size:     fileHeader.Size,
	}, nil
}

// URL returns the download route of a local file
func (s *LocalFileStorage) URL(ctx context.Context, key string) (string, error) {
	return utils.GetFileURL(key), nil
}

// Delete removes a local file; a missing file is not an error
func (s *LocalFileStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := utils.ResolveUploadPath(s.dir, key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
