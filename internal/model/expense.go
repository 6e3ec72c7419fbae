package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseType is a lookup table for expense categories (mechanical work,
// bodywork, taxes, ...). Referenced rows cannot be deleted.
type ExpenseType struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Expense is a cost attributed to preparing or maintaining one vehicle.
type Expense struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VehicleID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	TypeID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"type_id"`
	Type       *ExpenseType `gorm:"foreignKey:TypeID;constraint:OnDelete:RESTRICT" json:"type,omitempty"`
	SupplierID *uuid.UUID   `gorm:"type:uuid;index" json:"supplier_id"`
	Supplier   *Supplier    `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description string          `gorm:"type:text;not null" json:"description"`
	ExpenseDate time.Time       `gorm:"type:date;not null;index" json:"expense_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
