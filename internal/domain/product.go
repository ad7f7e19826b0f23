package domain

// Product is a catalog entry. A product is unique per (name, category, gender).
type Product struct {
	ID       uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string `json:"name" gorm:"not null;index"`
	Price    int64  `json:"price" gorm:"not null"`
	Gender   string `json:"gender" gorm:"not null;index"`
	Category string `json:"category" gorm:"not null;index"`
	ImageURL string `json:"imageUrl" gorm:"not null"`
}

// CartItem holds a positive quantity of one product for one user. Rows are
// deleted when the quantity would drop to zero and cleared wholesale when the
// user's cart is converted into an order.
type CartItem struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64  `json:"userId" gorm:"not null;index"`
	ProductID uint64 `json:"productId" gorm:"not null;index"`
	Quantity  int64  `json:"quantity" gorm:"not null;default:1"`
}

// CartProduct is a cart row joined with its product, as served to clients and
// snapshotted into orders.
type CartProduct struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Gender   string `json:"gender"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
	Quantity int64  `json:"quantity"`
}
