package http

import (
	"net/http"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

type UploadHandler struct {
	imageUsecase usecase.ImageUC
	access       *cfg.AccessCfg
	logger       logger.Logger
}

func NewUploadHandler(imageUsecase usecase.ImageUC, access *cfg.AccessCfg, logger logger.Logger) *UploadHandler {
	return &UploadHandler{imageUsecase: imageUsecase, access: access, logger: logger}
}

type uploadImageResponse struct {
	URL string `json:"url"`
}

// uploadImage
//
//	@Summary		Загрузка изображения товара
//	@Description	Принимает один файл в поле image, возвращает публичный URL.
//	@Description	Требует секретный ключ в поле формы access-key или заголовке X-Access-Key.
//	@Tags			uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Изображение (image/*, до 10 МБ)"
//	@Success		201		{object}	uploadImageResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/uploads/images [post]
func (u *UploadHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	const (
		maxImageSize        = 10 << 20
		maxTotalRequestSize = 11 << 20
		maxMemory           = 10 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		u.logger.Warnf("upload image: %s", r.Header.Get("Content-Type"))
		WriteError(w, e.ErrExpectedMultipart)
		return
	}

	key := extractAccessKey(r, accessKeyBody{
		AccessKey:      r.FormValue("access-key"),
		AccessKeyAlias: r.FormValue("accessKey"),
	})
	if err := requireAccessKey(u.access, key); err != nil {
		u.logger.Warnf("upload image access check: %s", err.Error())
		WriteError(w, err)
		return
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		WriteError(w, e.ErrNoFile)
		return
	}

	data, mimeType, err := readFile(files[0], maxImageSize)
	if err != nil {
		u.logger.Warnf("upload image %s: %s", files[0].Filename, err.Error())
		WriteError(w, err)
		return
	}

	res, err := u.imageUsecase.UploadImage(r.Context(),
		usecase.NewUploadImageReq(data, mimeType, int64(len(data)), files[0].Filename))
	if err != nil {
		u.logger.Errorf(err, "upload image %s failed", files[0].Filename)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, &uploadImageResponse{URL: res.URL})
}
