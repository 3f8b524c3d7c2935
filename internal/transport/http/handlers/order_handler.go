package handlers

import (
	"context"
	"net/http"

	"rental-service/internal/dto"
	"rental-service/internal/metrics"
	"rental-service/internal/models"
	"rental-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		log:    log,
	}
}

// CreateOrder godoc
// @Summary Создание заказа
// @Description Создаёт заказ и бронирует единицы товара на даты аренды. Комплекты разворачиваются в составляющие. Нехватка хотя бы одной позиции откатывает заказ целиком.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Данные заказа"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар или клиент не найден"
// @Failure 409 {object} dto.InsufficientStockErrorResponse "Не хватает единиц товара"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Невалидное тело создания заказа", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	in := service.CreateOrderInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	}
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid customer_id", nil))
			return
		}
		in.CustomerID = &id
	}

	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product_id in items", nil))
			return
		}
		from, err := dto.ParseDate(it.RentalStartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
			return
		}
		to, err := dto.ParseDate(it.RentalEndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
			return
		}
		in.Items = append(in.Items, service.CreateOrderItem{
			ProductID:   pid,
			Quantity:    it.Quantity,
			RentalStart: from,
			RentalEnd:   to,
		})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	metrics.OrdersTotal.WithLabelValues(string(order.Status)).Inc()
	h.log.Info("Заказ создан",
		zap.String("order_id", order.ID.String()),
		zap.Int64("total_cents", order.TotalCents),
	)
	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

// GetOrder godoc
// @Summary Карточка заказа
// @Description Админ видит любой заказ, клиент — только свой, гость — по совпадению email из оформления.
// @Tags orders
// @Produce json
// @Param id path string true "ID заказа"
// @Param email query string false "Email гостевого заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Нет идентификации и email"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден или чужой"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id, c.Query("email"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// ListOrders godoc
// @Summary Список заказов
// @Description Клиент видит только свои заказы, админ — все с фильтрами.
// @Tags orders
// @Produce json
// @Param status query string false "Фильтр по статусу"
// @Param email query string false "Фильтр по email (админ)"
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} dto.OrderListResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Нет идентификации"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	f := service.ListFilter{
		Limit:  atoiQuery(c, "limit", 20),
		Offset: atoiQuery(c, "offset", 0),
	}
	if s := c.Query("status"); s != "" {
		st := models.OrderStatus(s)
		f.Status = &st
	}
	if e := c.Query("email"); e != "" {
		f.Email = &e
	}

	orders, total, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	resp := dto.OrderListResponse{
		Orders: make([]dto.OrderResponse, 0, len(orders)),
		Total:  total,
	}
	for i := range orders {
		resp.Orders = append(resp.Orders, dto.ToOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// CancelOrder godoc
// @Summary Отмена заказа
// @Description Допустима из PENDING и CONFIRMED; блокировки склада снимаются в той же транзакции.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "ID заказа"
// @Param body body dto.CancelOrderRequest false "Причина отмены"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.InvalidStateErrorResponse "Недопустимый переход статуса"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	var req dto.CancelOrderRequest
	_ = c.ShouldBindJSON(&req) // тело опционально

	var reason *string
	if req.Reason != "" {
		reason = &req.Reason
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), id, reason)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	metrics.OrdersTotal.WithLabelValues(string(order.Status)).Inc()
	h.log.Info("Заказ отменён", zap.String("order_id", order.ID.String()))
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "order cancelled"})
}

// ConfirmOrder godoc
// @Summary Подтверждение заказа (админ)
// @Description PENDING -> CONFIRMED
// @Tags orders
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.InvalidStateErrorResponse "Недопустимый переход статуса"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нужна роль админа"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/orders/{id}/confirm [post]
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	h.transition(c, h.orders.ConfirmOrder)
}

// CompleteOrder godoc
// @Summary Завершение заказа (админ)
// @Description CONFIRMED -> COMPLETED; блокировки остаются, но перестают учитываться.
// @Tags orders
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.InvalidStateErrorResponse "Недопустимый переход статуса"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нужна роль админа"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/orders/{id}/complete [post]
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	h.transition(c, h.orders.CompleteOrder)
}

func (h *OrderHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*models.Order, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	order, err := fn(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	metrics.OrdersTotal.WithLabelValues(string(order.Status)).Inc()
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}
