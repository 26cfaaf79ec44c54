package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/pkg/validator"
)

// writeError traduce errores de dominio a status + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case domain.IsValidation(err):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrTransferClosed):
		status, code = fiber.StatusConflict, "TRANSFER_CLOSED"
	case errors.Is(err, domain.ErrReferenced):
		status, code = fiber.StatusConflict, "REFERENCED"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrTransient):
		status, code = fiber.StatusServiceUnavailable, "RETRY"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	}
	return c.Status(status).JSON(errorBody(err, code))
}

func errorBody(err error, code string) dto.ErrorResponse {
	return dto.ErrorResponse{Code: code, Message: err.Error()}
}

// bind parsea el body y valida los tags. Devuelve nil si todo está bien.
func bind(c *fiber.Ctx, out any) *dto.ErrorResponse {
	if err := c.BodyParser(out); err != nil {
		return &dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	if errs := validator.ValidateStruct(out); errs != nil {
		return &dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)}
	}
	return nil
}

func badRequest(c *fiber.Ctx, e *dto.ErrorResponse) error {
	return c.Status(fiber.StatusBadRequest).JSON(e)
}

// pageParams lee limit/offset de la query; sin valores aplica los de la API.
func pageParams(c *fiber.Ctx) (dto.PageRequest, *dto.ErrorResponse) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, &dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"}
	}
	if errs := validator.ValidateStruct(page); errs != nil {
		return page, &dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)}
	}
	return page.WithDefaults(), nil
}

// queryTime acepta RFC3339 o fecha (YYYY-MM-DD). Vacío devuelve nil.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Invalid(key, nil)
}
