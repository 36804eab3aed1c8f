package clients

import (
	"time"

	"github.com/google/uuid"
)

// Client is the root entity every onboarding artifact hangs off
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	LogoKey   *string   `json:"logo_key,omitempty" db:"logo_key"`
	AppURL    *string   `json:"app_url,omitempty" db:"app_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
