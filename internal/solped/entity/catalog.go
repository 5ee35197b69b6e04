package entity

import "time"

// Area is a requesting department. Deactivated instead of deleted so old
// requisitions keep their reference.
type Area struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string `json:"description" gorm:"size:300"`
	Active      bool   `json:"active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Area) TableName() string {
	return "areas"
}

// Unit is a measurement unit for requisition items.
type Unit struct {
	ID     string `json:"id" gorm:"primaryKey;size:32"`
	Name   string `json:"name" gorm:"size:100;not null"`
	Symbol string `json:"symbol" gorm:"size:20;not null"`
	Active bool   `json:"active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Unit) TableName() string {
	return "units"
}
