package usecase

import (
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
)

// PRODUCT USECASE

// ListProductsReq — запрос страницы каталога.
type ListProductsReq struct {
	Page  int
	Limit int
}

// ListProductsRes — страница каталога с метаданными пагинации.
type ListProductsRes struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int64
	Count      int
	Products   []*domain.Product
}

// CreateProductReq — запрос на создание товара.
// ImageURL — устаревшее одиночное поле, принимается для обратной совместимости.
type CreateProductReq struct {
	Name        string
	Description string
	ImageURL    string
	Images      []string
	PriceCents  int64
}

// ReplaceProductReq — запрос на атомарную замену полей товара по id.
type ReplaceProductReq struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	Images      []string
	PriceCents  int64
}

// UploadImageReq представляет изображение, загруженное через multipart/form-data.
type UploadImageReq struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// UploadImageRes — результат загрузки: публичный URL объекта.
type UploadImageRes struct {
	URL string
	Key string
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	ProductCreated OutboxEventType = "product.created"
	ProductUpdated OutboxEventType = "product.updated"
	ProductDeleted OutboxEventType = "product.deleted"
)

// OutboxEvent — запись таблицы outbox, публикуемая воркером в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string // uuid
	EventType   OutboxEventType
	ProductID   string
	Payload     []byte // JSON-снимок товара на момент события
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type WriteRawMessageReq struct {
	ProductID string
	Payload   []byte
}

// MAPPERS

func NewListProductsReq(page, limit int) *ListProductsReq {
	return &ListProductsReq{Page: page, Limit: limit}
}

func NewCreateProductReq(name, description, imageURL string, images []string, priceCents int64) *CreateProductReq {
	return &CreateProductReq{
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		Images:      images,
		PriceCents:  priceCents,
	}
}

func NewReplaceProductReq(id, name, description, imageURL string, images []string, priceCents int64) *ReplaceProductReq {
	return &ReplaceProductReq{
		ID:          id,
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		Images:      images,
		PriceCents:  priceCents,
	}
}

func NewUploadImageReq(data []byte, mimeType string, size int64, name string) *UploadImageReq {
	return &UploadImageReq{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewUploadImageRes(url, key string) *UploadImageRes {
	return &UploadImageRes{URL: url, Key: key}
}

func NewWriteRawMessageReq(productID string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: productID,
		Payload:   payload,
	}
}
