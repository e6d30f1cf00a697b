// ABOUTME: Wire types for the panel API: users, packages, templates, bouquets
// ABOUTME: Snapshots mirror server JSON and are replaced wholesale on refetch

package model

// User is the authenticated operator's profile as returned by GET /me.
// It is an immutable snapshot; a refresh replaces the whole value.
type User struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Credit   float64 `json:"credit"`
}

// Bouquet is a channel grouping belonging to exactly one package or template.
// Bouquets are never stored on their own; they live on their parent entity.
type Bouquet struct {
	ID         int    `json:"id"`
	ParentID   int    `json:"parent_id"`
	Name       string `json:"bouquet_name"`
	Type       string `json:"type"`
	CategoryID int    `json:"category_id"`
	IsAdult    bool   `json:"is_adult"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Package is a subscription offering. Bouquets is nil until the separate
// bouquet fetch completes; that is a partial-data state, not an error.
type Package struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	IsTrial        bool      `json:"is_trial"`
	IsPaidTrial    bool      `json:"is_paid_trial"`
	CanEnableVPN   bool      `json:"can_enable_vpn"`
	Credit         float64   `json:"credit"`
	Period         int       `json:"period"`
	PeriodType     string    `json:"period_type"`
	MaxConnections int       `json:"max_connections"`
	CreatedAt      string    `json:"created_at"`
	UpdatedAt      string    `json:"updated_at"`
	Bouquets       []Bouquet `json:"bouquets,omitempty"`
}

// Template is a reusable bouquet composition tied to a package.
type Template struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	IsGlobal         bool      `json:"is_global"`
	ShowForMyCreated bool      `json:"show_for_my_created"`
	Publish          bool      `json:"publish"`
	PackageID        int       `json:"package_id"`
	CreatedByID      int       `json:"created_by_id"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
	Bouquets         []Bouquet `json:"bouquets,omitempty"`
}

// List is the {"data": [...]} envelope wrapping collection responses.
type List[T any] struct {
	Data []T `json:"data"`
}

// TokenResponse is the OAuth password-grant response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}
