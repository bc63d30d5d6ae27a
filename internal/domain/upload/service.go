// internal/domain/upload/service.go
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Service stores stock item photos on local disk and tracks them on the
// catalog record.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new upload service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// SaveStockImage validates and stores an uploaded product photo, replacing
// any previous one, and returns the updated stock item.
func (s *Service) SaveStockImage(stockItemID uint, file multipart.File, header *multipart.FileHeader) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := s.db.First(&item, stockItemID).Error; err != nil {
		return nil, fmt.Errorf("stock item not found")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("unsupported image type '%s'", ext)
	}

	maxSize := int64(s.config.Uploads.MaxSizeMB) * 1024 * 1024
	if header.Size > maxSize {
		return nil, fmt.Errorf("image exceeds the %dMB limit", s.config.Uploads.MaxSizeMB)
	}

	if err := os.MkdirAll(s.config.Uploads.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	path := filepath.Join(s.config.Uploads.Dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	previous := item.ImageURL
	item.ImageURL = fmt.Sprintf("%s/%s", strings.TrimRight(s.config.Uploads.BaseURL, "/"), filename)
	if err := s.db.Model(&item).Update("image_url", item.ImageURL).Error; err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to update stock item: %w", err)
	}

	s.removeStoredImage(previous)

	return &item, nil
}

// RemoveStockImage deletes the stored photo of a stock item
func (s *Service) RemoveStockImage(stockItemID uint) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := s.db.First(&item, stockItemID).Error; err != nil {
		return nil, fmt.Errorf("stock item not found")
	}
	if item.ImageURL == "" {
		return &item, nil
	}

	previous := item.ImageURL
	if err := s.db.Model(&item).Update("image_url", "").Error; err != nil {
		return nil, fmt.Errorf("failed to update stock item: %w", err)
	}
	item.ImageURL = ""

	s.removeStoredImage(previous)

	return &item, nil
}

// removeStoredImage drops a previously stored file. Only files under the
// configured upload prefix are touched; external URLs are left alone.
func (s *Service) removeStoredImage(imageURL string) {
	prefix := strings.TrimRight(s.config.Uploads.BaseURL, "/") + "/"
	if imageURL == "" || !strings.HasPrefix(imageURL, prefix) {
		return
	}
	filename := strings.TrimPrefix(imageURL, prefix)
	os.Remove(filepath.Join(s.config.Uploads.Dir, filename))
}
