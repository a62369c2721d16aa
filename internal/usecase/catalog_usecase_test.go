package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Insert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) Replace(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, offset, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *mockProductRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockCacheRepo struct {
	mock.Mock
}

func (m *mockCacheRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCacheRepo) SetProduct(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockCacheRepo) DeleteProducts(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

type mockImagesInfra struct {
	mock.Mock
}

func (m *mockImagesInfra) UploadImage(ctx context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UploadImageRes), args.Error(1)
}

func (m *mockImagesInfra) CleanupImages(keys []string) {
	m.Called(keys)
}

func newTestCatalogUC(productRepo *mockProductRepo, cacheRepo *mockCacheRepo, imagesInfra *mockImagesInfra) *CatalogUseCase {
	return NewCatalogUC(productRepo, nil, cacheRepo, imagesInfra, nil, logger.NewSlogLogger())
}

func makeProducts(n int) []*domain.Product {
	products := make([]*domain.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, &domain.Product{
			ID:          "11111111-1111-1111-1111-11111111111" + string(rune('0'+i)),
			Name:        "product",
			Description: "desc",
			Images:      []string{"https://cdn.example.com/a.jpg"},
			PriceCents:  100,
			CreatedAt:   time.Now(),
		})
	}
	return products
}

func TestListProductsClampsPageAndLimit(t *testing.T) {
	productRepo := new(mockProductRepo)
	productRepo.On("Count", mock.Anything).Return(int64(2), nil)
	productRepo.On("List", mock.Anything, 0, 100).Return(makeProducts(2), nil)

	uc := newTestCatalogUC(productRepo, new(mockCacheRepo), new(mockImagesInfra))

	res, err := uc.ListProducts(context.Background(), NewListProductsReq(0, 1000))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 100, res.Limit)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, int64(1), res.TotalPages)
	assert.Equal(t, 2, res.Count)
	productRepo.AssertExpectations(t)
}

func TestListProductsNegativeLimitClampsToOne(t *testing.T) {
	// Отрицательный limit прижимается к 1, а не заменяется значением
	// по умолчанию: по умолчанию трактуется только отсутствующий (нулевой).
	productRepo := new(mockProductRepo)
	productRepo.On("Count", mock.Anything).Return(int64(2), nil)
	productRepo.On("List", mock.Anything, 0, 1).Return(makeProducts(1), nil)

	uc := newTestCatalogUC(productRepo, new(mockCacheRepo), new(mockImagesInfra))

	res, err := uc.ListProducts(context.Background(), NewListProductsReq(1, -5))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Limit)
	assert.Equal(t, int64(2), res.TotalPages)
	productRepo.AssertExpectations(t)
}

func TestListProductsZeroLimitUsesDefault(t *testing.T) {
	productRepo := new(mockProductRepo)
	productRepo.On("Count", mock.Anything).Return(int64(2), nil)
	productRepo.On("List", mock.Anything, 0, 10).Return(makeProducts(2), nil)

	uc := newTestCatalogUC(productRepo, new(mockCacheRepo), new(mockImagesInfra))

	res, err := uc.ListProducts(context.Background(), NewListProductsReq(1, 0))
	require.NoError(t, err)

	assert.Equal(t, 10, res.Limit)
	productRepo.AssertExpectations(t)
}

func TestListProductsSecondPage(t *testing.T) {
	productRepo := new(mockProductRepo)
	productRepo.On("Count", mock.Anything).Return(int64(7), nil)
	productRepo.On("List", mock.Anything, 5, 5).Return(makeProducts(2), nil)

	uc := newTestCatalogUC(productRepo, new(mockCacheRepo), new(mockImagesInfra))

	res, err := uc.ListProducts(context.Background(), NewListProductsReq(2, 5))
	require.NoError(t, err)

	assert.Equal(t, int64(7), res.Total)
	assert.Equal(t, int64(2), res.TotalPages)
	assert.Equal(t, 2, res.Count)
	assert.Len(t, res.Products, 2)
}

func TestListProductsEmptyCatalog(t *testing.T) {
	productRepo := new(mockProductRepo)
	productRepo.On("Count", mock.Anything).Return(int64(0), nil)
	productRepo.On("List", mock.Anything, 0, 10).Return([]*domain.Product{}, nil)

	uc := newTestCatalogUC(productRepo, new(mockCacheRepo), new(mockImagesInfra))

	res, err := uc.ListProducts(context.Background(), NewListProductsReq(1, 10))
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.Total)
	assert.Equal(t, int64(1), res.TotalPages, "пустой каталог все равно имеет одну страницу")
	assert.Equal(t, 0, res.Count)
}

func TestGetProductCacheHit(t *testing.T) {
	id := "3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6"
	cached := &domain.Product{ID: id, Name: "cached"}

	cacheRepo := new(mockCacheRepo)
	cacheRepo.On("GetProduct", mock.Anything, id).Return(cached, nil)

	productRepo := new(mockProductRepo)

	uc := newTestCatalogUC(productRepo, cacheRepo, new(mockImagesInfra))

	product, err := uc.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, cached, product)
	productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetProductCacheMissFillsCacheInBackground(t *testing.T) {
	id := "3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6"
	stored := &domain.Product{ID: id, Name: "stored"}

	cacheRepo := new(mockCacheRepo)
	cacheRepo.On("GetProduct", mock.Anything, id).Return(nil, nil)

	cacheFilled := make(chan struct{})
	cacheRepo.On("SetProduct", mock.Anything, stored).Run(func(mock.Arguments) {
		close(cacheFilled)
	}).Return(nil)

	productRepo := new(mockProductRepo)
	productRepo.On("GetByID", mock.Anything, id).Return(stored, nil)

	uc := newTestCatalogUC(productRepo, cacheRepo, new(mockImagesInfra))

	product, err := uc.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, stored, product)

	select {
	case <-cacheFilled:
	case <-time.After(time.Second):
		t.Fatal("product was not cached in background")
	}
}

func TestGetProductNotFound(t *testing.T) {
	id := "3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6"

	cacheRepo := new(mockCacheRepo)
	cacheRepo.On("GetProduct", mock.Anything, id).Return(nil, nil)

	productRepo := new(mockProductRepo)
	productRepo.On("GetByID", mock.Anything, id).Return(nil, e.ErrProductNotFound)

	uc := newTestCatalogUC(productRepo, cacheRepo, new(mockImagesInfra))

	_, err := uc.GetProduct(context.Background(), id)
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestGetProductInvalidID(t *testing.T) {
	uc := newTestCatalogUC(new(mockProductRepo), new(mockCacheRepo), new(mockImagesInfra))

	_, err := uc.GetProduct(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, e.ErrInvalidProductID)
}

func TestCreateProductValidation(t *testing.T) {
	longName := ""
	for i := 0; i < 201; i++ {
		longName += "n"
	}
	longURL := "https://"
	for i := 0; i < 2048; i++ {
		longURL += "u"
	}

	tests := []struct {
		name    string
		req     *CreateProductReq
		wantErr error
	}{
		{
			name:    "empty name",
			req:     NewCreateProductReq("   ", "desc", "https://img", nil, 100),
			wantErr: e.ErrProductNameRequired,
		},
		{
			name:    "name too long",
			req:     NewCreateProductReq(longName, "desc", "https://img", nil, 100),
			wantErr: e.ErrNameTooLong,
		},
		{
			name:    "empty description",
			req:     NewCreateProductReq("name", "", "https://img", nil, 100),
			wantErr: e.ErrDescRequired,
		},
		{
			name:    "no image sources",
			req:     NewCreateProductReq("name", "desc", "", nil, 100),
			wantErr: e.ErrImageRequired,
		},
		{
			name:    "blank images only",
			req:     NewCreateProductReq("name", "desc", "", []string{"  ", ""}, 100),
			wantErr: e.ErrImageRequired,
		},
		{
			name:    "image url too long",
			req:     NewCreateProductReq("name", "desc", longURL, nil, 100),
			wantErr: e.ErrImageURLTooLong,
		},
		{
			name:    "negative price",
			req:     NewCreateProductReq("name", "desc", "https://img", nil, -1),
			wantErr: e.ErrInvalidPrice,
		},
	}

	uc := newTestCatalogUC(new(mockProductRepo), new(mockCacheRepo), new(mockImagesInfra))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateProduct(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReplaceProductInvalidID(t *testing.T) {
	uc := newTestCatalogUC(new(mockProductRepo), new(mockCacheRepo), new(mockImagesInfra))

	_, err := uc.ReplaceProduct(context.Background(),
		NewReplaceProductReq("42", "name", "desc", "https://img", nil, 100))
	assert.ErrorIs(t, err, e.ErrInvalidProductID)
}

func TestDeleteProductInvalidID(t *testing.T) {
	uc := newTestCatalogUC(new(mockProductRepo), new(mockCacheRepo), new(mockImagesInfra))

	err := uc.DeleteProduct(context.Background(), "42")
	assert.ErrorIs(t, err, e.ErrInvalidProductID)
}

func TestUploadImageDelegatesToInfra(t *testing.T) {
	req := NewUploadImageReq([]byte{0xff, 0xd8}, "image/jpeg", 2, "photo.jpg")
	res := NewUploadImageRes("http://minio:9000/products/products/x.jpg", "products/x.jpg")

	imagesInfra := new(mockImagesInfra)
	imagesInfra.On("UploadImage", mock.Anything, req).Return(res, nil)

	uc := newTestCatalogUC(new(mockProductRepo), new(mockCacheRepo), imagesInfra)

	got, err := uc.UploadImage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, res.URL, got.URL)
	imagesInfra.AssertExpectations(t)
}
