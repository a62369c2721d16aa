package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
)

type ProductUC interface {
	ListProducts(ctx context.Context, req *ListProductsReq) (*ListProductsRes, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	ReplaceProduct(ctx context.Context, req *ReplaceProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type ImageUC interface {
	UploadImage(ctx context.Context, req *UploadImageReq) (*UploadImageRes, error)
}
