package handlers

import (
	"net/http"
	"strconv"

	"rental-service/internal/dto"
	"rental-service/internal/metrics"
	"rental-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog *service.CatalogService
	bundles *service.BundleService
	log     *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, bundles *service.BundleService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		bundles: bundles,
		log:     log,
	}
}

// CreateProduct godoc
// @Summary Создание товара (админ)
// @Description Создаёт товар или комплект. Валюта — только EUR.
// @Tags catalog
// @Accept json
// @Produce json
// @Param product body dto.CreateProductRequest true "Данные товара"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нужна роль админа"
// @Failure 409 {object} dto.ConflictErrorResponse "Slug уже занят"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Невалидное тело создания товара", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	p, err := h.catalog.CreateProduct(c.Request.Context(), service.ProductInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		PriceCents:   req.PriceCents,
		CurrencyCode: req.CurrencyCode,
		TotalStock:   req.TotalStock,
		IsActive:     req.IsActive,
		IsBundle:     req.IsBundle,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProductResponse(p))
}

// UpdateProduct godoc
// @Summary Изменение товара (админ)
// @Description Частичное обновление: передаются только изменяемые поля. Уменьшение склада не блокируется — перебронирование видно в отчёте.
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "ID товара"
// @Param product body dto.UpdateProductRequest true "Изменяемые поля"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нужна роль админа"
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар не найден"
// @Failure 409 {object} dto.ConflictErrorResponse "Slug уже занят"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/products/{id} [patch]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product id", nil))
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	p, err := h.catalog.UpdateProduct(c.Request.Context(), productID, service.ProductPatch{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		PriceCents:  req.PriceCents,
		TotalStock:  req.TotalStock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(p))
}

// GetProduct godoc
// @Summary Карточка товара
// @Tags catalog
// @Produce json
// @Param id path string true "ID товара"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар не найден"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product id", nil))
		return
	}

	p, err := h.catalog.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(p))
}

// ListProducts godoc
// @Summary Список товаров
// @Description По умолчанию только активные; q фильтрует по названию/slug.
// @Tags catalog
// @Produce json
// @Param q query string false "Поиск по названию"
// @Param all query bool false "Включая неактивные"
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} dto.ProductListResponse
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	f := service.ProductListFilter{
		OnlyActive: c.Query("all") != "true",
		Limit:      atoiQuery(c, "limit", 20),
		Offset:     atoiQuery(c, "offset", 0),
	}
	if q := c.Query("q"); q != "" {
		f.Query = &q
	}

	products, total, err := h.catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	resp := dto.ProductListResponse{
		Products: make([]dto.ProductResponse, 0, len(products)),
		Total:    total,
	}
	for i := range products {
		resp.Products = append(resp.Products, dto.ToProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteProduct godoc
// @Summary Удаление товара (админ)
// @Description Отказывает, если товар держат блокировки заказов или он входит в комплект.
// @Tags catalog
// @Produce json
// @Param id path string true "ID товара"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нужна роль админа"
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар не найден"
// @Failure 409 {object} dto.ConflictErrorResponse "Товар занят заказами или входит в комплект"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product id", nil))
		return
	}

	if _, err := h.catalog.DeleteProduct(c.Request.Context(), productID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "product deleted"})
}

// UpdateBundle godoc
// @Summary Состав комплекта (админ)
// @Description Полностью заменяет составляющие комплекта. Вложенные комплекты запрещены.
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "ID комплекта"
// @Param items body dto.UpdateBundleRequest true "Новый состав"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Неверный состав"
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нужна роль админа"
// @Failure 404 {object} dto.NotFoundErrorResponse "Комплект не найден"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/bundles/{id}/items [put]
func (h *CatalogHandler) UpdateBundle(c *gin.Context) {
	bundleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid bundle id", nil))
		return
	}

	var req dto.UpdateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	items := make([]service.BundleItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product id in items", nil))
			return
		}
		items = append(items, service.BundleItemInput{ProductID: pid, Quantity: it.Quantity})
	}

	if err := h.catalog.UpdateBundleItems(c.Request.Context(), bundleID, items); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "bundle items updated"})
}

// GetBundleCart godoc
// @Summary Развёртка комплекта
// @Description Возвращает строки корзины, в которые разворачивается комплект (по одной на составляющую).
// @Tags catalog
// @Produce json
// @Param id path string true "ID комплекта"
// @Success 200 {object} dto.BundleCartResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Комплект не найден"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/bundles/{id}/add-to-cart [get]
func (h *CatalogHandler) GetBundleCart(c *gin.Context) {
	bundleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid bundle id", nil))
		return
	}

	name, lines, err := h.bundles.Expand(c.Request.Context(), bundleID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	resp := dto.BundleCartResponse{
		BundleID:   bundleID.String(),
		BundleName: name,
		Items:      make([]dto.BundleCartItem, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Items = append(resp.Items, dto.BundleCartItem{
			ProductID:   l.ProductID.String(),
			ProductName: l.ProductName,
			PriceCents:  l.PriceCents,
			Currency:    l.CurrencyCode,
			ImageURL:    l.ImageURL,
			Quantity:    l.Quantity,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// StockReport godoc
// @Summary Отчёт по складу (админ)
// @Description Занятость всех активных товаров на сегодня; перебронированные позиции дополнены списком заказов.
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.StockReportResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нужна роль админа"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/v1/products/stocks [get]
func (h *CatalogHandler) StockReport(c *gin.Context) {
	entries, err := h.catalog.StockReport(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	resp := dto.StockReportResponse{Entries: make([]dto.StockReportEntry, 0, len(entries))}
	oversold := 0
	for i := range entries {
		e := entries[i]
		metrics.StockAvailable.WithLabelValues(e.Product.ID.String()).Set(float64(e.Available))
		if e.Available < 0 {
			oversold++
		}
		out := dto.StockReportEntry{
			Product:   dto.ToProductResponse(&e.Product),
			Reserved:  e.Reserved,
			Available: e.Available,
			Oversold:  e.Available < 0,
		}
		for _, row := range e.OversoldOrders {
			out.OversoldOrders = append(out.OversoldOrders, dto.BlockingOrder{
				OrderID:         row.OrderID.String(),
				Units:           row.Units,
				RentalStartDate: dto.FormatDate(row.RentalStart),
				RentalEndDate:   dto.FormatDate(row.RentalEnd),
				CustomerName:    row.CustomerName,
				CustomerEmail:   row.CustomerEmail,
			})
		}
		resp.Entries = append(resp.Entries, out)
	}
	metrics.OversoldProducts.Set(float64(oversold))
	c.JSON(http.StatusOK, resp)
}

func atoiQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
