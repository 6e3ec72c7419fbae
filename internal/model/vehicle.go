package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vehicle status enum constants. SOLD is terminal: it is only entered
// through sale settlement and never left.
const (
	VehicleAvailable     = "AVAILABLE"
	VehicleSold          = "SOLD"
	VehicleInMaintenance = "IN_MAINTENANCE"
)

// Vehicle is a unit of stock: a used vehicle bought for resale.
type Vehicle struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Make       string     `gorm:"type:varchar(100);not null" json:"make"`
	Model      string     `gorm:"type:varchar(100);not null" json:"model"`
	Year       int        `gorm:"not null" json:"year"`
	Plate      string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"plate"`
	VIN        string     `gorm:"type:varchar(50)" json:"vin"`
	Color      string     `gorm:"type:varchar(50)" json:"color"`
	Mileage    int        `gorm:"not null;default:0" json:"mileage"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id"`
	Supplier   *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	PurchasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"purchase_price"`
	ListPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"list_price"`

	Status       string    `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"status"`
	Notes        string    `gorm:"type:text" json:"notes"`
	PurchaseDate time.Time `gorm:"type:date;not null" json:"purchase_date"`

	Expenses []Expense      `gorm:"foreignKey:VehicleID" json:"expenses,omitempty"`
	Images   []VehicleImage `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VehicleImage is a listing photo. At most one image per vehicle carries the
// principal flag; the clear-then-set in the image service keeps it that way.
type VehicleImage struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VehicleID   uuid.UUID `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	Principal   bool      `gorm:"not null;default:false" json:"principal"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}
