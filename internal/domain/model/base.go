package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID assigns a random UUID when id is still zero.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// BeforeCreate hooks keep ID generation in Go so rows can be created the
// same way against Postgres and the SQLite test database.

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

func (c *StripeCustomer) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (a *ArtistStripeAccount) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}

func (c *CoinTransaction) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (e *StripeWebhookEvent) BeforeCreate(tx *gorm.DB) error {
	newID(&e.ID)
	return nil
}
