package handlers

import (
	"errors"
	"net/http"

	"rental-service/internal/dto"
	"rental-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondServiceError переводит сентинельные ошибки сервисного слоя в HTTP-ответ.
// Неопознанная ошибка — 500 без деталей наружу, подробности в лог.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("authentication required"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("access denied"))

	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrBundleNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))

	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, dto.NewInsufficientStockError(err.Error()))

	case errors.Is(err, service.ErrInvalidStateTransition):
		c.JSON(http.StatusBadRequest, dto.NewInvalidStateError(err.Error()))

	case errors.Is(err, service.ErrSlugAlreadyExists),
		errors.Is(err, service.ErrProductHasHolds),
		errors.Is(err, service.ErrProductInBundle):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))

	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrQuantityInvalid),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrCustomerInfoRequired),
		errors.Is(err, service.ErrInactiveProduct),
		errors.Is(err, service.ErrCurrencyNotEUR),
		errors.Is(err, service.ErrNestedBundle),
		errors.Is(err, service.ErrNotABundle),
		errors.Is(err, service.ErrStockInvalid):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))

	default:
		log.Error("Необработанная ошибка сервиса", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}
