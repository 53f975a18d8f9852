package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	ProductStatusAvailable = "available"
	ProductStatusReserved  = "reserved"
	ProductStatusSold      = "sold"
)

type Product struct {
	gorm.Model
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"type:varchar(50)"`
	Condition   string         `json:"condition" gorm:"type:varchar(20)"` // "new", "like_new", "used"
	Price       float64        `json:"price" gorm:"not null;type:decimal(10,2)"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	Status      string         `json:"status" gorm:"not null;default:'available';type:varchar(20)"`
	SellerID    uint           `json:"sellerId" gorm:"not null;index"`
	Seller      User           `json:"seller" gorm:"foreignKey:SellerID"`
	ViewCount   int            `json:"viewCount" gorm:"default:0"`
}
