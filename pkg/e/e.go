package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable   = fmt.Errorf("incorrect environment variable")
	ErrAccessKeyNotConfigured = fmt.Errorf("access key is not configured on the server")

	// 400 Bad Request
	ErrInvalidRequestBody   = fmt.Errorf("invalid request body")
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrNameTooLong          = fmt.Errorf("product name exceeds 200 characters")
	ErrDescRequired         = fmt.Errorf("product description is required")
	ErrDescTooLong          = fmt.Errorf("product description exceeds 5000 characters")
	ErrImageRequired        = fmt.Errorf("at least one image url is required")
	ErrImageURLTooLong      = fmt.Errorf("image url exceeds 2048 characters")
	ErrInvalidPrice         = fmt.Errorf("price must be a non-negative number")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidProductID     = fmt.Errorf("invalid product id")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data request")
	ErrNoFile               = fmt.Errorf("no file provided")
	ErrFileTooLarge         = fmt.Errorf("file exceeds the 10 MB limit")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 401 Unauthorized
	ErrUnauthorized = fmt.Errorf("unauthorized")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
