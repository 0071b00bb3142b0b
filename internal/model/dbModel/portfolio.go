package dbModel

import "time"

// PortfolioDoc is the per-user portfolio document row: assets and settings
// are stored as JSONB blobs keyed by the user identity.
type PortfolioDoc struct {
	UserID    string    `db:"user_id"`
	Assets    []byte    `db:"assets"`
	Settings  []byte    `db:"settings"`
	UpdatedAt time.Time `db:"updated_at"`
}
