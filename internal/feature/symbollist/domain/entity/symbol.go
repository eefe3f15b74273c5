// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol is one position of an exchange's persisted symbol list.
// (Market, SortKey) identifies the position; Code repeats the invalid-ticker
// sentinel for every position that failed validation.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:32;not null;index"`
	Name      string    `gorm:"size:255;not null;default:''"`
	Market    string    `gorm:"size:100;not null;uniqueIndex:idx_symbols_market_sort,priority:1"`
	IsActive  bool      `gorm:"not null"`
	SortKey   int       `gorm:"not null;default:0;uniqueIndex:idx_symbols_market_sort,priority:2"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
