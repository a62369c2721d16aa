package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/DRSN-tech/catalog-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

type Router struct {
	router *chi.Mux
	access *cfg.AccessCfg
	logger logger.Logger
}

func NewRouter(router *chi.Mux, access *cfg.AccessCfg, logger logger.Logger) *Router {
	return &Router{router: router, access: access, logger: logger}
}

func (r *Router) Init(prUC usecase.ProductUC, imgUC usecase.ImageUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Get("/", info)

	prHandler := NewProductHandler(prUC, r.access, r.logger)
	registerProductRoutes(r.router, prHandler)

	upHandler := NewUploadHandler(imgUC, r.access, r.logger)
	registerUploadRoutes(r.router, upHandler)
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Post("/", prHandler.createProduct)
		pr.Get("/{id}", prHandler.getProduct)
		pr.Put("/{id}", prHandler.replaceProduct)
		pr.Delete("/{id}", prHandler.deleteProduct)
	})
}

func registerUploadRoutes(router chi.Router, upHandler *UploadHandler) {
	router.Post("/uploads/images", upHandler.uploadImage)
}

type infoResponse struct {
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// info
//
//	@Summary	Проверка доступности сервиса
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	infoResponse
//	@Router		/ [get]
func info(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, &infoResponse{
		Message:   "E-commerce Backend API",
		Status:    "running",
		Timestamp: time.Now().UTC(),
	})
}
