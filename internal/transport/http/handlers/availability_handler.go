package handlers

import (
	"net/http"

	"rental-service/internal/dto"
	"rental-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	availability *service.AvailabilityService
	log          *zap.Logger
}

func NewAvailabilityHandler(availability *service.AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		log:          log,
	}
}

// Check godoc
// @Summary Доступность товара на интервал
// @Description Считает свободные единицы товара на полуинтервал [start_date, end_date). Отрицательное available означает перебронирование.
// @Tags availability
// @Accept json
// @Produce json
// @Param request body dto.AvailabilityRequest true "Товар и интервал"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные параметры"
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар не найден"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/availability [post]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Невалидный запрос доступности", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product_id", nil))
		return
	}
	from, err := dto.ParseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
		return
	}
	to, err := dto.ParseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
		return
	}

	var excludeOrderID *uuid.UUID
	if req.ExcludeOrderID != "" {
		id, err := uuid.Parse(req.ExcludeOrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid exclude_order_id", nil))
			return
		}
		excludeOrderID = &id
	}

	av, err := h.availability.ComputeAvailable(c.Request.Context(), productID, from, to, excludeOrderID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.AvailabilityResponse{
		ProductID:     av.ProductID.String(),
		From:          dto.FormatDate(from),
		To:            dto.FormatDate(to),
		TotalStock:    av.TotalStock,
		Blocked:       av.Blocked,
		Available:     av.Available,
		AvailableFrom: dto.FormatDate(av.AvailableFrom),
	})
}
