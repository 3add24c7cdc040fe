package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product is a catalogue entry as the host platform stores it. Configurable
// products are never exported themselves; their children carry the parent
// reference and are exported as variants of one item group.
type Product struct {
	ID               string         `json:"id" gorm:"primaryKey;size:36"`
	SKU              string         `json:"sku" gorm:"uniqueIndex;not null"`
	Type             ProductType    `json:"type" gorm:"index;not null;default:SIMPLE"`
	ParentID         *string        `json:"parent_id" gorm:"index;size:36"`
	Parent           *Product       `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	StoreID          *string        `json:"store_id" gorm:"index"`
	Enabled          bool           `json:"enabled" gorm:"default:true"`
	Title            string         `json:"title" gorm:"not null"`
	Description      string         `json:"description"`
	Brand            string         `json:"brand"`
	Category         string         `json:"category"`
	Price            float64        `json:"price" gorm:"type:decimal(10,2)"`
	SalePrice        *float64       `json:"sale_price" gorm:"type:decimal(10,2)"`
	Quantity         int            `json:"quantity"`
	Condition        string         `json:"condition" gorm:"default:new"`
	URLKey           string         `json:"url_key"`
	ImageURL         string         `json:"image_url"`
	AdditionalImages pq.StringArray `json:"additional_images" gorm:"type:text"`
	Color            string         `json:"color"`
	Size             string         `json:"size"`
	Material         string         `json:"material"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type ProductType string

const (
	ProductTypeSimple       ProductType = "SIMPLE"
	ProductTypeConfigurable ProductType = "CONFIGURABLE"
)

type ProductAvailability string

const (
	AvailabilityInStock    ProductAvailability = "in stock"
	AvailabilityOutOfStock ProductAvailability = "out of stock"
)

// Availability derives the feed availability from the stock quantity.
func (p *Product) Availability() ProductAvailability {
	if p.Quantity > 0 {
		return AvailabilityInStock
	}
	return AvailabilityOutOfStock
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
