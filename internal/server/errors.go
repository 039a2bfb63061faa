package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	categorydomain "github.com/smallbiznis/pistache/internal/category/domain"
	newsletterdomain "github.com/smallbiznis/pistache/internal/newsletter/domain"
	productdomain "github.com/smallbiznis/pistache/internal/product/domain"
	productsizedomain "github.com/smallbiznis/pistache/internal/productsize/domain"
	"github.com/smallbiznis/pistache/internal/ratelimit"
	"github.com/smallbiznis/pistache/internal/storage"
	systemlogdomain "github.com/smallbiznis/pistache/internal/systemlog/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	if len(v.Errors) > 0 {
		return v.Errors[0].Message
	}
	return "validation error"
}

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrRateLimited       = errors.New("rate_limited")
	ErrFileRequired      = errors.New("file_required")
	ErrFileTooLarge      = errors.New("file_too_large")
	ErrUnsupportedMedia  = errors.New("unsupported_media_type")
	ErrInvalidCategoryID = errors.New("invalid_category_id")
)

const internalErrorMessage = "Erro interno do servidor"

type errorMapping struct {
	target  error
	status  int
	message string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{ErrInvalidRequest, http.StatusBadRequest, "Requisição inválida"},
	{ErrFileRequired, http.StatusBadRequest, "Arquivo é obrigatório"},
	{ErrFileTooLarge, http.StatusBadRequest, "Arquivo excede o tamanho máximo permitido"},
	{ErrUnsupportedMedia, http.StatusBadRequest, "Tipo de arquivo não permitido"},
	{ErrInvalidCategoryID, http.StatusBadRequest, "ID de categoria inválido"},
	{ErrRateLimited, http.StatusTooManyRequests, "Muitas requisições, tente novamente em instantes"},
	{ErrNotFound, http.StatusNotFound, "Recurso não encontrado"},

	{productdomain.ErrInvalidID, http.StatusBadRequest, "ID de produto inválido"},
	{productdomain.ErrInvalidName, http.StatusBadRequest, "Nome é obrigatório"},
	{productdomain.ErrInvalidPrice, http.StatusBadRequest, "Preço deve ser maior ou igual a zero"},
	{productdomain.ErrInvalidStock, http.StatusBadRequest, "Estoque deve ser maior ou igual a zero"},
	{productdomain.ErrNotFound, http.StatusNotFound, "Produto não encontrado"},

	{categorydomain.ErrInvalidID, http.StatusBadRequest, "ID de produto inválido"},
	{categorydomain.ErrInvalidName, http.StatusBadRequest, "Nome da categoria é obrigatório"},
	{categorydomain.ErrInvalidCategoryID, http.StatusBadRequest, "ID de categoria inválido"},
	{categorydomain.ErrDuplicateSlug, http.StatusConflict, "Já existe uma categoria com este slug"},
	{categorydomain.ErrNotFound, http.StatusNotFound, "Categoria não encontrada"},
	{categorydomain.ErrProductNotFound, http.StatusNotFound, "Produto não encontrado"},

	{productsizedomain.ErrInvalidID, http.StatusBadRequest, "ID de produto inválido"},
	{productsizedomain.ErrInvalidSize, http.StatusBadRequest, "Tamanho é obrigatório"},
	{productsizedomain.ErrSizeTooLong, http.StatusBadRequest, "Tamanho excede o limite de caracteres"},
	{productsizedomain.ErrInvalidStock, http.StatusBadRequest, "Estoque deve ser maior ou igual a zero"},
	{productsizedomain.ErrNotFound, http.StatusNotFound, "Tamanho não encontrado"},
	{productsizedomain.ErrProductNotFound, http.StatusNotFound, "Produto não encontrado"},

	{systemlogdomain.ErrInvalidLevel, http.StatusBadRequest, "Nível de log inválido"},
	{systemlogdomain.ErrInvalidDateRange, http.StatusBadRequest, "Período inválido"},

	{newsletterdomain.ErrInvalidEmail, http.StatusBadRequest, "E-mail inválido"},
	{newsletterdomain.ErrInvalidSource, http.StatusBadRequest, "Origem inválida"},

	{storage.ErrInvalidPath, http.StatusBadRequest, "Caminho de arquivo inválido"},
	{storage.ErrNotFound, http.StatusNotFound, "Arquivo não encontrado"},
	{storage.ErrUploadFailed, http.StatusInternalServerError, "Falha ao fazer upload do arquivo"},

	{ratelimit.ErrLockBusy, http.StatusConflict, "Operação em andamento, tente novamente"},
	{gorm.ErrRecordNotFound, http.StatusNotFound, "Recurso não encontrado"},
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: internalErrorMessage}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorResponse{
			Error:  vErr.Error(),
			Errors: vErr.Errors,
		}
	}

	var dup *productsizedomain.DuplicateSizeError
	if errors.As(err, &dup) {
		return http.StatusConflict, errorResponse{Error: dup.Error()}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, errorResponse{Error: m.message}
		}
	}
	return http.StatusInternalServerError, errorResponse{Error: internalErrorMessage}
}

// classifyErrorForLog returns the error type and code written to the request log.
func classifyErrorForLog(err error) (string, string) {
	status, _ := mapError(err)
	switch {
	case status == http.StatusBadRequest:
		return "validation_error", err.Error()
	case status == http.StatusNotFound:
		return "not_found", err.Error()
	case status == http.StatusConflict:
		return "conflict", err.Error()
	case status == http.StatusTooManyRequests:
		return "rate_limited", err.Error()
	default:
		return "internal_error", "internal_error"
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}
