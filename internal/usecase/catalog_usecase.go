package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	maxNameLen     = 200
	maxDescLen     = 5000
	maxImageURLLen = 2048

	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// CatalogUseCase реализует бизнес-логику каталога товаров.
type CatalogUseCase struct {
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	cacheRepo   CacheRepository
	imagesInfra ImagesInfra
	dbPool      transaction.Transactional
	logger      logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	imagesInfra ImagesInfra,
	dbPool transaction.Transactional,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		cacheRepo:   cacheRepo,
		imagesInfra: imagesInfra,
		dbPool:      dbPool,
		logger:      logger,
	}
}

// ListProducts возвращает страницу каталога, отсортированную от новых к старым.
// Номер страницы и размер приводятся к допустимым диапазонам: page >= 1, 1 <= limit <= 100.
func (c *CatalogUseCase) ListProducts(ctx context.Context, req *ListProductsReq) (*ListProductsRes, error) {
	const op = "CatalogUseCase.ListProducts"

	page := req.Page
	if page < 1 {
		page = defaultPage
	}

	// Отсутствующий или нулевой limit получает значение по умолчанию,
	// отрицательный прижимается к нижней границе диапазона.
	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := (page - 1) * limit

	total, err := c.productRepo.Count(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	products, err := c.productRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	if totalPages < 1 {
		totalPages = 1
	}

	return &ListProductsRes{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Count:      len(products),
		Products:   products,
	}, nil
}

// GetProduct возвращает товар по id, используя кэш со сквозным чтением.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "CatalogUseCase.GetProduct"

	if _, err := uuid.Parse(id); err != nil {
		return nil, e.ErrInvalidProductID
	}

	cached, err := c.cacheRepo.GetProduct(ctx, id)
	if err != nil {
		c.logger.Warnf("cache lookup failed for product %s: %v", id, err)
	}
	if cached != nil {
		return cached, nil
	}

	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Фоновое добавление товара в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := c.cacheRepo.SetProduct(bgCtx, product); err != nil {
			c.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
		}
	}()

	return product, nil
}

// CreateProduct валидирует запрос, нормализует изображения и сохраняет новый товар,
// записывая событие product.created в outbox той же транзакцией.
func (c *CatalogUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.CreateProduct"

	name, desc, images, err := c.validateProduct(req.Name, req.Description, req.ImageURL, req.Images, req.PriceCents)
	if err != nil {
		return nil, err
	}

	var created *domain.Product

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	created, err = c.productRepo.Insert(ctx, domain.NewProduct(name, desc, images, req.PriceCents))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = c.recordEvent(ctx, ProductCreated, created); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// ReplaceProduct атомарно заменяет все клиентские поля товара по id.
// Замена выполняется одним UPDATE в транзакции: двухшаговая последовательность
// «создать копию, удалить оригинал» не используется.
func (c *CatalogUseCase) ReplaceProduct(ctx context.Context, req *ReplaceProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.ReplaceProduct"

	if _, err := uuid.Parse(req.ID); err != nil {
		return nil, e.ErrInvalidProductID
	}

	name, desc, images, err := c.validateProduct(req.Name, req.Description, req.ImageURL, req.Images, req.PriceCents)
	if err != nil {
		return nil, err
	}

	var updated *domain.Product

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	product := domain.NewProduct(name, desc, images, req.PriceCents)
	product.ID = req.ID

	updated, err = c.productRepo.Replace(ctx, product)
	if err != nil {
		return nil, err
	}

	if err = c.recordEvent(ctx, ProductUpdated, updated); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	c.invalidateCache(ctx, req.ID)

	return updated, nil
}

// DeleteProduct удаляет товар по id. Отсутствующий id — не ошибка хранилища,
// а отдельный исход ErrProductNotFound.
func (c *CatalogUseCase) DeleteProduct(ctx context.Context, id string) error {
	const op = "CatalogUseCase.DeleteProduct"

	if _, err := uuid.Parse(id); err != nil {
		return e.ErrInvalidProductID
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if err = c.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	deleted := &domain.Product{ID: id}
	if err = c.recordEvent(ctx, ProductDeleted, deleted); err != nil {
		return e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	c.invalidateCache(ctx, id)

	return nil
}

// UploadImage сохраняет изображение во внешнем хранилище и возвращает его публичный URL.
func (c *CatalogUseCase) UploadImage(ctx context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	const op = "CatalogUseCase.UploadImage"

	res, err := c.imagesInfra.UploadImage(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// recordEvent добавляет событие изменения товара в outbox в рамках текущей транзакции.
func (c *CatalogUseCase) recordEvent(ctx context.Context, eventType OutboxEventType, product *domain.Product) error {
	payload, err := json.Marshal(newProductEventPayload(product))
	if err != nil {
		return err
	}

	_, err = c.outboxRepo.Create(ctx, &OutboxEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ProductID: product.ID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now(),
	})

	return err
}

// invalidateCache удаляет товар из кэша после успешной мутации. Ошибки не фатальны.
func (c *CatalogUseCase) invalidateCache(ctx context.Context, id string) {
	if err := c.cacheRepo.DeleteProducts(ctx, []string{id}); err != nil {
		c.logger.Warnf("Failed to invalidate product cache: %v", err)
	}
}

// validateProduct проверяет поля товара и нормализует изображения к каноническому списку:
// непустой массив имеет приоритет, иначе одиночный imageurl становится единственным элементом.
// Хотя бы один источник изображения обязателен.
func (c *CatalogUseCase) validateProduct(name, desc, imageURL string, images []string, priceCents int64) (string, string, []string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", nil, e.ErrProductNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", "", nil, e.ErrNameTooLong
	}

	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", "", nil, e.ErrDescRequired
	}
	if utf8.RuneCountInString(desc) > maxDescLen {
		return "", "", nil, e.ErrDescTooLong
	}

	if priceCents < 0 {
		return "", "", nil, e.ErrInvalidPrice
	}

	normalized := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		normalized = append(normalized, img)
	}
	if len(normalized) == 0 {
		if imageURL = strings.TrimSpace(imageURL); imageURL != "" {
			normalized = append(normalized, imageURL)
		}
	}
	if len(normalized) == 0 {
		return "", "", nil, e.ErrImageRequired
	}
	for _, img := range normalized {
		if utf8.RuneCountInString(img) > maxImageURLLen {
			return "", "", nil, e.ErrImageURLTooLong
		}
	}

	return name, desc, normalized, nil
}

// productEventPayload — JSON-снимок товара в payload события outbox.
type productEventPayload struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Desc       string   `json:"desc,omitempty"`
	Images     []string `json:"images,omitempty"`
	PriceCents int64    `json:"priceCents,omitempty"`
}

func newProductEventPayload(product *domain.Product) productEventPayload {
	return productEventPayload{
		ID:         product.ID,
		Name:       product.Name,
		Desc:       product.Description,
		Images:     product.Images,
		PriceCents: product.PriceCents,
	}
}
