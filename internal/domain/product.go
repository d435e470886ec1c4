package domain

import "time"

type Product struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:255;not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"not null;index"`
	MRP         float64   `json:"mrp" gorm:"column:mrp;not null"`
	Gender      string    `json:"gender" gorm:"size:20;index"`
	Category    string    `json:"category" gorm:"size:64;index"`
	Stock       int       `json:"stock" gorm:"not null"`
	Tags        []string  `json:"tags" gorm:"serializer:json;type:text"`
	ImageURLs   []string  `json:"image_urls" gorm:"serializer:json;type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// ProductFilter carries the optional catalog query parameters.
// Zero values mean "not filtered".
type ProductFilter struct {
	Gender   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Query    string
}
