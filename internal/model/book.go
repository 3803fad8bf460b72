package model

import "time"

type Book struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Title     string  `gorm:"size:100;not null"`
	Author    string  `gorm:"size:50;not null"`
	AuthorID  *int64  `gorm:"index"`
	Year      int     `gorm:"not null"`
	Price     float64 `gorm:"type:decimal(18,2);not null"`
	Version   int64   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
