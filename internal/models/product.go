package models

import "time"

// Product represents a product in the store catalog.
// Price is expressed in the smallest unit of the store currency.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Description string    `json:"description" validate:"omitempty,max=2000"`
	Price       int64     `json:"price" gorm:"not null" validate:"gte=0"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category" gorm:"index;type:varchar(100)"`
	Collection  string    `json:"collection" gorm:"index;type:varchar(100)"`
	Sizes       []string  `json:"sizes" gorm:"serializer:json;type:text"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductUpdate carries a partial product update. Nil fields are left
// untouched; the merge happens in the database, never in memory.
type ProductUpdate struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	Price       *int64    `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string   `json:"image_url"`
	Category    *string   `json:"category"`
	Collection  *string   `json:"collection"`
	Sizes       *[]string `json:"sizes"`
	InStock     *bool     `json:"in_stock"`
}

// Columns returns the names of the columns set on u.
func (u ProductUpdate) Columns() []string {
	var cols []string
	if u.Name != nil {
		cols = append(cols, "name")
	}
	if u.Description != nil {
		cols = append(cols, "description")
	}
	if u.Price != nil {
		cols = append(cols, "price")
	}
	if u.ImageURL != nil {
		cols = append(cols, "image_url")
	}
	if u.Category != nil {
		cols = append(cols, "category")
	}
	if u.Collection != nil {
		cols = append(cols, "collection")
	}
	if u.Sizes != nil {
		cols = append(cols, "sizes")
	}
	if u.InStock != nil {
		cols = append(cols, "in_stock")
	}
	return cols
}

// Apply merges the set fields of u into p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Collection != nil {
		p.Collection = *u.Collection
	}
	if u.Sizes != nil {
		p.Sizes = append([]string(nil), (*u.Sizes)...)
	}
	if u.InStock != nil {
		p.InStock = *u.InStock
	}
}

// ProductFilter narrows a catalog listing. Empty fields match everything.
type ProductFilter struct {
	Category    string
	Collection  string
	InStockOnly bool
}

// Match reports whether p passes the filter.
func (f ProductFilter) Match(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Collection != "" && p.Collection != f.Collection {
		return false
	}
	if f.InStockOnly && !p.InStock {
		return false
	}
	return true
}
