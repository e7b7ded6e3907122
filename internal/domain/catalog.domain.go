package domain

import "time"

// Prices in the catalogs are localized display strings ("R$ 299,90"); they
// are only parsed into numbers at checkout time.

type Tire struct {
	ID        string    `json:"id"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Size      string    `json:"size"`
	Price     string    `json:"price"`
	ImageURL  string    `json:"image_url"`
	InStock   bool      `json:"in_stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Duration    string    `json:"duration"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Produto struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdminUser is a storefront admin account (bkautocenter / aguanaboca),
// authenticated with JWT bearer tokens rather than sessions.
type AdminUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CartItem is what the storefront posts at checkout; Price arrives as the
// localized display string.
type CartItem struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Size     string `json:"size"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Image    string `json:"image,omitempty"`
}
