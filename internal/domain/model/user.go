package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserType is the platform role a user signed up with.
type UserType string

const (
	UserTypeFan             UserType = "fan"
	UserTypeArtist          UserType = "artist"
	UserTypeServiceProvider UserType = "service_provider"
)

// User is a platform account. The table is owned by the web app; this
// service only reads it.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	UserType  UserType  `gorm:"column:user_type;size:32;not null" json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// ArtistProfile is the public artist page belonging to a user.
type ArtistProfile struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	StageName    string          `gorm:"size:255;not null" json:"stage_name"`
	PricePerHour decimal.Decimal `gorm:"type:numeric(10,2)" json:"price_per_hour"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ArtistProfile) TableName() string {
	return "artist_profiles"
}
