package http

import (
	"net/http"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
)

const accessKeyHeader = "X-Access-Key"

// accessKeyBody — поля тела запроса, в которых клиенты передают секрет.
// Поле access-key каноническое, accessKey оставлено для старых клиентов.
type accessKeyBody struct {
	AccessKey      string `json:"access-key"`
	AccessKeyAlias string `json:"accessKey"`
}

// keyExtractor возвращает значение секрета из одного источника запроса.
type keyExtractor func() string

// extractAccessKey перебирает источники секрета в фиксированном порядке приоритета:
// поле тела access-key, затем accessKey, затем заголовок X-Access-Key.
func extractAccessKey(r *http.Request, body accessKeyBody) string {
	extractors := []keyExtractor{
		func() string { return body.AccessKey },
		func() string { return body.AccessKeyAlias },
		func() string { return r.Header.Get(accessKeyHeader) },
	}

	for _, extract := range extractors {
		if key := extract(); key != "" {
			return key
		}
	}

	return ""
}

// requireAccessKey сравнивает переданный секрет с серверным.
// Отличает "клиент не прав" (401) от "сервер не сконфигурирован" (500).
func requireAccessKey(access *cfg.AccessCfg, provided string) error {
	if access == nil || access.Key == "" {
		return e.ErrAccessKeyNotConfigured
	}

	if provided == "" || provided != access.Key {
		return e.ErrUnauthorized
	}

	return nil
}
