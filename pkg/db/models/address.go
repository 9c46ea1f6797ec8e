package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Country struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null"`
	Code string    `gorm:"column:code;not null;uniqueIndex"`
}

func (c *Country) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type State struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CountryID uuid.UUID `gorm:"column:country_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Code      string    `gorm:"column:code;not null"`
}

func (s *State) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Address is a postal address. Quotes and orders reference addresses by id;
// orders always hold their own clones.
type Address struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid;index"`
	FirstName  string     `gorm:"column:first_name;not null"`
	LastName   string     `gorm:"column:last_name;not null"`
	Company    *string    `gorm:"column:company"`
	Line1      string     `gorm:"column:line1;not null"`
	Line2      *string    `gorm:"column:line2"`
	City       string     `gorm:"column:city;not null"`
	PostalCode string     `gorm:"column:postal_code;not null"`
	Phone      *string    `gorm:"column:phone"`
	CountryID  uuid.UUID  `gorm:"column:country_id;type:uuid;not null"`
	Country    *Country   `gorm:"foreignKey:CountryID"`
	StateID    *uuid.UUID `gorm:"column:state_id;type:uuid"`
	State      *State     `gorm:"foreignKey:StateID"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Address) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// Clone returns an unsaved copy with a zero id. Country and state references
// are shared since they are lookup data.
func (a *Address) Clone() *Address {
	if a == nil {
		return nil
	}
	clone := *a
	clone.ID = uuid.Nil
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}
	clone.Company = cloneString(a.Company)
	clone.Line2 = cloneString(a.Line2)
	clone.Phone = cloneString(a.Phone)
	if a.CustomerID != nil {
		id := *a.CustomerID
		clone.CustomerID = &id
	}
	if a.StateID != nil {
		id := *a.StateID
		clone.StateID = &id
	}
	return &clone
}

// SameAs reports whether two addresses describe the same recipient and
// location, ignoring identity and ownership.
func (a *Address) SameAs(other *Address) bool {
	if a == nil || other == nil {
		return a == nil && other == nil
	}
	return a.FirstName == other.FirstName &&
		a.LastName == other.LastName &&
		stringValue(a.Company) == stringValue(other.Company) &&
		a.Line1 == other.Line1 &&
		stringValue(a.Line2) == stringValue(other.Line2) &&
		a.City == other.City &&
		a.PostalCode == other.PostalCode &&
		stringValue(a.Phone) == stringValue(other.Phone) &&
		a.CountryID == other.CountryID &&
		uuidValue(a.StateID) == uuidValue(other.StateID)
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func uuidValue(v *uuid.UUID) uuid.UUID {
	if v == nil {
		return uuid.Nil
	}
	return *v
}
