package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mufufarm/farmstore-api/utils"
)

// MaxUploadSize caps uploaded files at 10MB.
const MaxUploadSize = 10 << 20

const (
	paymentProofsSubdir = "payment_proofs"
	productImagesSubdir = "product_images"
)

var (
	proofExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".pdf": true, ".webp": true,
	}
	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	}
)

// FileStore writes uploads under a base directory with UUID filenames and
// hands back the public /uploads/... path. File writes are not transactional
// with database writes; callers remove the file when the row never commits.
type FileStore struct {
	BaseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{BaseDir: baseDir}
}

// EnsureDirs creates the upload subdirectories at startup.
func (fs *FileStore) EnsureDirs() error {
	for _, sub := range []string{paymentProofsSubdir, productImagesSubdir} {
		if err := os.MkdirAll(filepath.Join(fs.BaseDir, sub), 0o755); err != nil {
			return fmt.Errorf("error creating upload directory %s: %w", sub, err)
		}
	}
	return nil
}

// SavePaymentProof stores an order's payment proof.
func (fs *FileStore) SavePaymentProof(fh *multipart.FileHeader) (string, error) {
	return fs.save(fh, paymentProofsSubdir, proofExtensions, "payment_proof")
}

// SaveProductImage stores a catalog image.
func (fs *FileStore) SaveProductImage(fh *multipart.FileHeader) (string, error) {
	return fs.save(fh, productImagesSubdir, imageExtensions, "image")
}

func (fs *FileStore) save(fh *multipart.FileHeader, subdir string, allowed map[string]bool, field string) (string, error) {
	if fh.Size == 0 {
		return "", utils.NewValidationError(field, "file is empty")
	}
	if fh.Size > MaxUploadSize {
		return "", utils.NewValidationError(field, fmt.Sprintf("file too large, maximum size is %dMB", MaxUploadSize/(1<<20)))
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowed[ext] {
		return "", utils.NewValidationError(field, "invalid file type: "+ext)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	filename := uuid.New().String() + ext
	dstPath := filepath.Join(fs.BaseDir, subdir, filename)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("error saving file: %w", err)
	}

	return "/uploads/" + subdir + "/" + filename, nil
}

// Remove deletes a stored file given its public /uploads/... path. Failures
// are logged, not returned; orphan cleanup is best-effort.
func (fs *FileStore) Remove(urlPath string) {
	rel := strings.TrimPrefix(urlPath, "/uploads/")
	if rel == "" || rel == urlPath {
		return
	}
	if err := os.Remove(filepath.Join(fs.BaseDir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		utils.ErrorLogger.Printf("Could not remove uploaded file %s: %v", urlPath, err)
	}
}
