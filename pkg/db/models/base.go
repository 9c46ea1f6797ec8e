package models

import "github.com/google/uuid"

// ensureID assigns a fresh UUID when the primary key is still zero. Rows are
// keyed client-side so sqlite and postgres behave the same.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model in dependency order, for AutoMigrate in
// sqlite development mode and tests.
func All() []any {
	return []any{
		&Country{},
		&State{},
		&Product{},
		&Coupon{},
		&Customer{},
		&Address{},
		&Quote{},
		&QuoteItem{},
		&OrderStatus{},
		&PaymentMethod{},
		&Order{},
		&OrderItem{},
		&OutboxEvent{},
	}
}
