package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/profilesync/internal/domain/customer"
	"github.com/storefront/profilesync/internal/domain/shared"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	AggregateModel
	ExternalUID string          `gorm:"type:varchar(64);index"`
	FirstName   string          `gorm:"type:varchar(100);not null"`
	LastName    string          `gorm:"type:varchar(100)"`
	Email       string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Status      customer.Status `gorm:"type:varchar(20);not null;default:'active'"`
	StoreCredit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Attributes  string          `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
// Records loaded from storage are by definition already persisted, so the
// transient lifecycle flags stay unset.
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ExternalUID: m.ExternalUID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		Status:      m.Status,
		StoreCredit: m.StoreCredit,
		Attributes:  m.Attributes,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *customer.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ExternalUID = c.ExternalUID
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
	m.Status = c.Status
	m.StoreCredit = c.StoreCredit
	m.Attributes = c.Attributes
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
