package services

import (
	"context"
	"sync"

	"vendicraft/internal/models"
	"vendicraft/internal/repositories"
	"vendicraft/pkg/cloudinary"

	"go.uber.org/zap"
)

// ImageUploader hosts product images and returns their public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file cloudinary.File, opts cloudinary.Options) (*cloudinary.UploadResult, error)
}

// CatalogState describes the in-memory catalog.
type CatalogState struct {
	Loaded    bool   `json:"loaded"`
	Count     int    `json:"count"`
	LastError string `json:"last_error,omitempty"`
}

// ProductService handles business logic related to products. It keeps an
// in-memory copy of the catalog which is only changed after the database
// confirmed a write.
type ProductService struct {
	repo     repositories.ProductRepository
	uploader ImageUploader
	folder   string
	logger   *zap.Logger

	// syncMu is held across each repository call and the list update
	// that follows it.
	syncMu sync.Mutex

	mu       sync.RWMutex
	products []models.Product
	loaded   bool
	lastErr  error
}

// NewProductService creates a new ProductService. uploader may be nil, in
// which case image files are ignored.
func NewProductService(repo repositories.ProductRepository, uploader ImageUploader, folder string, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:     repo,
		uploader: uploader,
		folder:   folder,
		logger:   logger,
	}
}

// Load fetches the whole catalog, newest first. On failure the previously
// loaded list is kept.
func (s *ProductService) Load(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	products, err := s.repo.GetAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		s.logger.Error("failed to load products", zap.Error(err))
		return backendError("load products", err)
	}
	s.products = products
	s.loaded = true
	s.lastErr = nil
	return nil
}

// Products returns the catalog entries matching filter, loading the
// catalog first if it never was.
func (s *ProductService) Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if !loaded {
		if err := s.Load(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// State reports whether the catalog is loaded and the last load error.
func (s *ProductService) State() CatalogState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := CatalogState{Loaded: s.loaded, Count: len(s.products)}
	if s.lastErr != nil {
		state.LastError = s.lastErr.Error()
	}
	return state
}

// GetProductByID reads a single product from the database.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, backendError("get product", err)
	}
	return product, nil
}

// CreateProduct stores product. If image is non-nil it is uploaded first;
// a failed upload is logged and the product is saved with the image URL
// it already carried.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product, image *cloudinary.File) (*models.Product, error) {
	if url, ok := s.tryUpload(ctx, image); ok {
		product.ImageURL = url
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("failed to create product", zap.String("name", product.Name), zap.Error(err))
		return nil, backendError("create product", err)
	}

	s.mu.Lock()
	if s.loaded {
		s.products = append([]models.Product{*product}, s.products...)
	}
	s.mu.Unlock()

	s.logger.Info("product created", zap.String("id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct merges update into the stored product and returns the row
// the database now holds. An image, when given, is uploaded first and
// replaces the image URL only if the upload succeeds.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate, image *cloudinary.File) (*models.Product, error) {
	if url, ok := s.tryUpload(ctx, image); ok {
		update.ImageURL = &url
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	product, err := s.repo.Update(ctx, id, update)
	if err != nil {
		s.logger.Error("failed to update product", zap.String("id", id), zap.Error(err))
		return nil, backendError("update product", err)
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = *product
			break
		}
	}
	s.mu.Unlock()

	s.logger.Info("product updated", zap.String("id", id))
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete product", zap.String("id", id), zap.Error(err))
		return backendError("delete product", err)
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.logger.Info("product deleted", zap.String("id", id))
	return nil
}

// UploadImage hosts file and returns its secure URL.
func (s *ProductService) UploadImage(ctx context.Context, file cloudinary.File) (string, error) {
	if s.uploader == nil {
		return "", backendError("upload image", cloudinary.ErrNotConfigured)
	}
	res, err := s.uploader.Upload(ctx, file, cloudinary.Options{Folder: s.folder})
	if err != nil {
		return "", backendError("upload image", err)
	}
	return res.SecureURL, nil
}

func (s *ProductService) tryUpload(ctx context.Context, image *cloudinary.File) (string, bool) {
	if image == nil {
		return "", false
	}
	url, err := s.UploadImage(ctx, *image)
	if err != nil {
		s.logger.Warn("image upload failed, keeping previous image", zap.String("file", image.Name), zap.Error(err))
		return "", false
	}
	return url, true
}
