package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

type mockProductUC struct {
	mock.Mock
}

func (m *mockProductUC) ListProducts(ctx context.Context, req *usecase.ListProductsReq) (*usecase.ListProductsRes, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListProductsRes), args.Error(1)
}

func (m *mockProductUC) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductUC) CreateProduct(ctx context.Context, req *usecase.CreateProductReq) (*domain.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductUC) ReplaceProduct(ctx context.Context, req *usecase.ReplaceProductReq) (*domain.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductUC) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockImageUC struct {
	mock.Mock
}

func (m *mockImageUC) UploadImage(ctx context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UploadImageRes), args.Error(1)
}

const testAccessKey = "s3cret"

func newTestRouter(t *testing.T, prUC usecase.ProductUC, imgUC usecase.ImageUC, serverKey string) *chi.Mux {
	t.Helper()

	r := chi.NewRouter()
	router := NewRouter(r, &cfg.AccessCfg{Key: serverKey}, logger.NewSlogLogger())
	router.Init(prUC, imgUC)

	return r
}

func doJSON(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func storedProduct() *domain.Product {
	return &domain.Product{
		ID:          "3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6",
		Name:        "Keyboard",
		Description: "Mechanical keyboard",
		Images:      []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		PriceCents:  59999,
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInfo(t *testing.T) {
	router := newTestRouter(t, new(mockProductUC), new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "running", body["status"])
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestListProductsResponseShape(t *testing.T) {
	prUC := new(mockProductUC)
	prUC.On("ListProducts", mock.Anything, &usecase.ListProductsReq{Page: 2, Limit: 5}).
		Return(&usecase.ListProductsRes{
			Page:       2,
			Limit:      5,
			Total:      7,
			TotalPages: 2,
			Count:      2,
			Products:   []*domain.Product{storedProduct(), storedProduct()},
		}, nil)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodGet, "/products?page=2&limit=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 5, body["limit"])
	assert.EqualValues(t, 7, body["total"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.EqualValues(t, 2, body["count"])

	products := body["products"].([]interface{})
	require.Len(t, products, 2)
	first := products[0].(map[string]interface{})
	assert.Equal(t, "https://cdn.example.com/a.jpg", first["imageurl"], "imageurl выводится из первого элемента images")
	assert.EqualValues(t, 599.99, first["price"])
}

func TestListProductsIgnoresInvalidQueryParams(t *testing.T) {
	prUC := new(mockProductUC)
	prUC.On("ListProducts", mock.Anything, &usecase.ListProductsReq{Page: 1, Limit: 10}).
		Return(&usecase.ListProductsRes{Page: 1, Limit: 10, Total: 0, TotalPages: 1, Products: []*domain.Product{}}, nil)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodGet, "/products?page=abc&limit=xyz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	prUC.AssertExpectations(t)
}

func TestGetProduct(t *testing.T) {
	product := storedProduct()

	prUC := new(mockProductUC)
	prUC.On("GetProduct", mock.Anything, product.ID).Return(product, nil)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodGet, "/products/"+product.ID, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, product.ID, body["id"])
	assert.Equal(t, "Keyboard", body["name"])
}

func TestGetProductNotFound(t *testing.T) {
	prUC := new(mockProductUC)
	prUC.On("GetProduct", mock.Anything, mock.Anything).Return(nil, e.ErrProductNotFound)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodGet, "/products/3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProduct(t *testing.T) {
	created := storedProduct()

	prUC := new(mockProductUC)
	prUC.On("CreateProduct", mock.Anything, mock.MatchedBy(func(req *usecase.CreateProductReq) bool {
		return req.Name == "Keyboard" && req.PriceCents == 59999 && len(req.Images) == 2
	})).Return(created, nil)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"access-key": testAccessKey,
		"name":       "Keyboard",
		"desc":       "Mechanical keyboard",
		"images":     []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		"price":      599.99,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, created.ID, body["id"])
	assert.Equal(t, "https://cdn.example.com/a.jpg", body["imageurl"])
	prUC.AssertExpectations(t)
}

func TestCreateProductKeyInHeader(t *testing.T) {
	created := storedProduct()

	prUC := new(mockProductUC)
	prUC.On("CreateProduct", mock.Anything, mock.Anything).Return(created, nil)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	payload, _ := json.Marshal(map[string]interface{}{
		"name":     "Keyboard",
		"desc":     "Mechanical keyboard",
		"imageurl": "https://cdn.example.com/a.jpg",
		"price":    100,
	})
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessKeyHeader, testAccessKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateProductWrongKey(t *testing.T) {
	prUC := new(mockProductUC)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"access-key": "wrong",
		"name":       "Keyboard",
		"desc":       "desc",
		"imageurl":   "https://cdn.example.com/a.jpg",
		"price":      100,
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	prUC.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestCreateProductMissingKey(t *testing.T) {
	router := newTestRouter(t, new(mockProductUC), new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"name":     "Keyboard",
		"desc":     "desc",
		"imageurl": "https://cdn.example.com/a.jpg",
		"price":    100,
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProductServerKeyUnconfigured(t *testing.T) {
	router := newTestRouter(t, new(mockProductUC), new(mockImageUC), "")

	rec := doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"access-key": "anything",
		"name":       "Keyboard",
		"desc":       "desc",
		"imageurl":   "https://cdn.example.com/a.jpg",
		"price":      100,
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["message"], "not configured")
}

func TestCreateProductBodyKeyBeatsHeader(t *testing.T) {
	// Ключ из тела имеет приоритет над заголовком: валидный заголовок
	// не спасает запрос с неверным ключом в теле.
	router := newTestRouter(t, new(mockProductUC), new(mockImageUC), testAccessKey)

	payload, _ := json.Marshal(map[string]interface{}{
		"access-key": "wrong",
		"name":       "Keyboard",
		"desc":       "desc",
		"imageurl":   "https://cdn.example.com/a.jpg",
		"price":      100,
	})
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessKeyHeader, testAccessKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProductMissingPrice(t *testing.T) {
	router := newTestRouter(t, new(mockProductUC), new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"access-key": testAccessKey,
		"name":       "Keyboard",
		"desc":       "desc",
		"imageurl":   "https://cdn.example.com/a.jpg",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductMalformedBody(t *testing.T) {
	router := newTestRouter(t, new(mockProductUC), new(mockImageUC), testAccessKey)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductValidationError(t *testing.T) {
	prUC := new(mockProductUC)
	prUC.On("CreateProduct", mock.Anything, mock.Anything).Return(nil, e.ErrImageRequired)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodPost, "/products", map[string]interface{}{
		"access-key": testAccessKey,
		"name":       "Keyboard",
		"desc":       "desc",
		"price":      100,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, e.ErrImageRequired.Error(), body["message"])
}

func TestReplaceProduct(t *testing.T) {
	updated := storedProduct()
	now := time.Now()
	updated.UpdatedAt = &now

	prUC := new(mockProductUC)
	prUC.On("ReplaceProduct", mock.Anything, mock.MatchedBy(func(req *usecase.ReplaceProductReq) bool {
		return req.ID == updated.ID && req.Name == "Keyboard v2"
	})).Return(updated, nil)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodPut, "/products/"+updated.ID, map[string]interface{}{
		"access-key": testAccessKey,
		"name":       "Keyboard v2",
		"desc":       "desc",
		"imageurl":   "https://cdn.example.com/a.jpg",
		"price":      599.99,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["updatedAt"])
	prUC.AssertExpectations(t)
}

func TestReplaceProductNotFound(t *testing.T) {
	prUC := new(mockProductUC)
	prUC.On("ReplaceProduct", mock.Anything, mock.Anything).Return(nil, e.ErrProductNotFound)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodPut, "/products/3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6", map[string]interface{}{
		"access-key": testAccessKey,
		"name":       "Keyboard",
		"desc":       "desc",
		"imageurl":   "https://cdn.example.com/a.jpg",
		"price":      100,
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	id := "3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6"

	prUC := new(mockProductUC)
	prUC.On("DeleteProduct", mock.Anything, id).Return(nil)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodDelete, "/products/"+id, map[string]interface{}{
		"access-key": testAccessKey,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Product deleted", body["message"])
	assert.Equal(t, id, body["id"])
}

func TestDeleteProductKeyViaHeaderWithoutBody(t *testing.T) {
	id := "3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6"

	prUC := new(mockProductUC)
	prUC.On("DeleteProduct", mock.Anything, id).Return(nil)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	req := httptest.NewRequest(http.MethodDelete, "/products/"+id, nil)
	req.Header.Set(accessKeyHeader, testAccessKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteProductNotFound(t *testing.T) {
	prUC := new(mockProductUC)
	prUC.On("DeleteProduct", mock.Anything, mock.Anything).Return(e.ErrProductNotFound)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodDelete, "/products/3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6", map[string]interface{}{
		"access-key": testAccessKey,
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, e.ErrProductNotFound.Error(), body["message"])
}

func TestDeleteProductUnauthorized(t *testing.T) {
	prUC := new(mockProductUC)

	router := newTestRouter(t, prUC, new(mockImageUC), testAccessKey)

	rec := doJSON(t, router, http.MethodDelete, "/products/3e0170e1-4e65-4f4e-9be5-03abc3c1b5a6", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	prUC.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
}
