package model

import "time"

// Defaults used when the store has not been configured yet.
const (
	DefaultStoreName  = "TOKO SEMBAKO SRI REJEKI UTAMA"
	DefaultSlogan     = "Belanja Dekat, Lebih Hemat"
	DefaultAdminPhone = "6283853399847"
)

// StoreSettings holds the single logical settings row.
type StoreSettings struct {
	ID           int64     `json:"id"`
	StoreName    string    `json:"store_name"`
	Slogan       string    `json:"slogan"`
	LogoFilename *string   `json:"logo_filename,omitempty"`
	AdminPhone   string    `json:"admin_phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StoreSettingsUpdate is a partial update; nil fields are left untouched.
type StoreSettingsUpdate struct {
	StoreName    *string `json:"store_name"`
	Slogan       *string `json:"slogan"`
	LogoFilename *string `json:"logo_filename"`
	AdminPhone   *string `json:"admin_phone"`
}

// PublicStoreInfo is what the storefront needs to render and hand off orders.
type PublicStoreInfo struct {
	StoreName      string `json:"storeName"`
	Slogan         string `json:"slogan"`
	LogoURL        string `json:"logoUrl,omitempty"`
	WhatsAppNumber string `json:"whatsappNumber"`
}

// LogoUpload is the result of storing a new store logo.
type LogoUpload struct {
	Filename string         `json:"filename"`
	URL      string         `json:"url"`
	Settings *StoreSettings `json:"settings"`
}

// AdminUser is a back-office account.
type AdminUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleAdmin is the only role allowed into the back-office.
const RoleAdmin = "admin"

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned after a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      AdminUser `json:"user"`
}
