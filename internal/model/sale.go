package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is a lookup table of accepted payment forms.
// Referenced rows cannot be deleted.
type PaymentMethod struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sale finalizes the transfer of one vehicle to a customer. The unique index
// on VehicleID enforces at most one sale per vehicle. A trade-in vehicle, if
// present, enters the business's own stock when the sale is settled.
type Sale struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VehicleID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"vehicle_id"`
	Vehicle         *Vehicle       `gorm:"foreignKey:VehicleID;constraint:OnDelete:RESTRICT" json:"vehicle,omitempty"`
	CustomerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer        *Customer      `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	PaymentMethodID uuid.UUID      `gorm:"type:uuid;not null;index" json:"payment_method_id"`
	PaymentMethod   *PaymentMethod `gorm:"foreignKey:PaymentMethodID;constraint:OnDelete:RESTRICT" json:"payment_method,omitempty"`

	SalePrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sale_price"`

	// Vehicle surrendered by the customer as partial payment.
	TradeInVehicleID *uuid.UUID      `gorm:"type:uuid;index" json:"trade_in_vehicle_id"`
	TradeInVehicle   *Vehicle        `gorm:"foreignKey:TradeInVehicleID" json:"trade_in_vehicle,omitempty"`
	TradeInValue     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"trade_in_value"`

	Notes    string    `gorm:"type:text" json:"notes"`
	SaleDate time.Time `gorm:"type:date;not null;index" json:"sale_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NetAmountDue is the cash still owed by the customer: sale price minus the
// agreed trade-in value. Derived, never stored.
func (s *Sale) NetAmountDue() decimal.Decimal {
	return s.SalePrice.Sub(s.TradeInValue)
}
