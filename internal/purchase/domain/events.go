package domain

// PurchaseRecorded is emitted through the outbox when a purchase row is
// newly inserted. Replays of the same (user, order) pair emit nothing.
type PurchaseRecorded struct {
	UserID      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
	UserName    string `json:"userName"`
	OrderID     string `json:"orderId"`
	CourseTitle string `json:"courseTitle"`
	PricePaise  int64  `json:"pricePaise"`
	Token       string `json:"token"`
}
