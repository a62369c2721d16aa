package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	access         *cfg.AccessCfg
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, access *cfg.AccessCfg, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, access: access, logger: logger}
}

// productRequest — тело POST /products и PUT /products/{id}.
// Секрет принимается и в теле, и в заголовке (см. extractAccessKey).
type productRequest struct {
	accessKeyBody
	Name        string           `json:"name"`
	Description string           `json:"desc"`
	ImageURL    string           `json:"imageurl"`
	Images      []string         `json:"images"`
	Price       *decimal.Decimal `json:"price"`
}

// productResponse — товар в том виде, в котором его отдает API.
// ImageURL выводится из первого элемента Images.
type productResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"desc"`
	ImageURL    string      `json:"imageurl"`
	Images      []string    `json:"images"`
	Price       json.Number `json:"price"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

type listProductsResponse struct {
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int64              `json:"total"`
	TotalPages int64              `json:"totalPages"`
	Count      int                `json:"count"`
	Products   []*productResponse `json:"products"`
}

type deleteProductResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func toProductResponse(product *domain.Product) *productResponse {
	return &productResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		ImageURL:    product.PrimaryImage(),
		Images:      product.Images,
		Price:       centsToPrice(product.PriceCents),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// listProducts
//
//	@Summary		Страница каталога
//	@Description	Возвращает страницу товаров, новые первыми
//	@Tags			products
//	@Produce		json
//	@Param			page	query		int	false	"Номер страницы (с 1)"
//	@Param			limit	query		int	false	"Размер страницы (1..100)"
//	@Success		200		{object}	listProductsResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePageParams(r)

	res, err := p.productUsecase.ListProducts(r.Context(), usecase.NewListProductsReq(page, limit))
	if err != nil {
		p.logger.Errorf(err, "list products failed")
		WriteError(w, err)
		return
	}

	products := make([]*productResponse, 0, len(res.Products))
	for _, product := range res.Products {
		products = append(products, toProductResponse(product))
	}

	WriteSuccess(w, http.StatusOK, &listProductsResponse{
		Page:       res.Page,
		Limit:      res.Limit,
		Total:      res.Total,
		TotalPages: res.TotalPages,
		Count:      res.Count,
		Products:   products,
	})
}

// getProduct
//
//	@Summary	Товар по id
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	productResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.logger.Warnf("get product %s: %s", id, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Требует секретный ключ в теле (access-key/accessKey) или заголовке X-Access-Key
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		productRequest	true	"Товар"
//	@Success		201		{object}	productResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	req, err := p.authorizedProductRequest(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	priceCents, err := requirePriceCents(req.Price)
	if err != nil {
		p.logger.Warnf("create product: %s", err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(),
		usecase.NewCreateProductReq(req.Name, req.Description, req.ImageURL, req.Images, priceCents))
	if err != nil {
		p.logger.Warnf("create product: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// replaceProduct
//
//	@Summary		Замена товара
//	@Description	Атомарно обновляет все поля товара по id. Требует секретный ключ.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"ID товара"
//	@Param			product	body		productRequest	true	"Новые поля товара"
//	@Success		200		{object}	productResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/products/{id} [put]
func (p *ProductHandler) replaceProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := p.authorizedProductRequest(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	priceCents, err := requirePriceCents(req.Price)
	if err != nil {
		p.logger.Warnf("replace product %s: %s", id, err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.ReplaceProduct(r.Context(),
		usecase.NewReplaceProductReq(id, req.Name, req.Description, req.ImageURL, req.Images, priceCents))
	if err != nil {
		p.logger.Warnf("replace product %s: %s", id, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// deleteProduct
//
//	@Summary		Удаление товара
//	@Description	Требует секретный ключ. Тело с ключом опционально.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id	path		string	true	"ID товара"
//	@Success		200	{object}	deleteProductResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Тело у DELETE опционально: ключ может прийти только заголовком.
	var body accessKeyBody
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize)).Decode(&body)

	if err := requireAccessKey(p.access, extractAccessKey(r, body)); err != nil {
		p.logger.Warnf("delete product %s: %s", id, err.Error())
		WriteError(w, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.logger.Warnf("delete product %s: %s", id, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &deleteProductResponse{
		Message: "Product deleted",
		ID:      id,
	})
}

const maxJSONBodySize = 1 << 20

// authorizedProductRequest декодирует тело и проверяет секрет до любых
// обращений к хранилищу.
func (p *ProductHandler) authorizedProductRequest(w http.ResponseWriter, r *http.Request) (*productRequest, error) {
	var req productRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize)).Decode(&req); err != nil {
		p.logger.Warnf("decode product request: %s", err.Error())
		return nil, e.ErrInvalidRequestBody
	}

	if err := requireAccessKey(p.access, extractAccessKey(r, req.accessKeyBody)); err != nil {
		p.logger.Warnf("access check: %s", err.Error())
		return nil, err
	}

	return &req, nil
}

// requirePriceCents требует наличие цены в теле: ноль — валидная цена,
// поэтому отсутствие поля различимо только через указатель.
func requirePriceCents(price *decimal.Decimal) (int64, error) {
	if price == nil {
		return 0, e.ErrInvalidPrice
	}
	return parsePriceToCents(*price)
}
