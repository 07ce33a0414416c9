package domain

type OrderPlaced struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	TotalCents int64  `json:"total_cents"`
	ItemCount  int    `json:"item_count"`
}

type OrderStatusChanged struct {
	OrderID           string      `json:"order_id"`
	UserID            string      `json:"user_id"`
	From              OrderStatus `json:"from"`
	To                OrderStatus `json:"to"`
	OperatorTriggered bool        `json:"operator_triggered"`
}
