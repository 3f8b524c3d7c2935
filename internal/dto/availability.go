package dto

// AvailabilityRequest — запрос доступности товара на полуинтервал
// [start_date, end_date).
type AvailabilityRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	// не учитывать блокировки этого заказа (повторная проверка при правке)
	ExcludeOrderID string `json:"exclude_order_id"`
}

// AvailabilityResponse — снимок занятости товара на запрошенный интервал.
// available может быть отрицательным при перебронировании.
type AvailabilityResponse struct {
	ProductID  string `json:"product_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	TotalStock int32  `json:"total_stock"`
	Blocked    int32  `json:"blocked"`
	Available  int32  `json:"available"`
	// ближайший день, с которого доступна хотя бы одна единица
	AvailableFrom string `json:"available_from"`
}
