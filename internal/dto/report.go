package dto

// BlockingOrder — заказ, удерживающий единицы товара на текущий день.
type BlockingOrder struct {
	OrderID         string `json:"order_id"`
	Units           int64  `json:"units"`
	RentalStartDate string `json:"rental_start_date"`
	RentalEndDate   string `json:"rental_end_date"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
}

// StockReportEntry — строка отчёта по складу на сегодня. Для перебронированных
// товаров (available < 0) перечисляются заказы-виновники.
type StockReportEntry struct {
	Product        ProductResponse `json:"product"`
	Reserved       int64           `json:"reserved"`
	Available      int64           `json:"available"`
	Oversold       bool            `json:"oversold"`
	OversoldOrders []BlockingOrder `json:"oversold_orders,omitempty"`
}

type StockReportResponse struct {
	Entries []StockReportEntry `json:"entries"`
}
