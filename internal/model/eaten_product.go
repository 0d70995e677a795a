package model

import (
	"time"
)

// UnitGrams is the only unit the analysis pipeline records.
const UnitGrams = "г"

// DefaultProductName is used when the analysis carries no food name.
const DefaultProductName = "Продукт"

type EatenProduct struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Value     *int64    `db:"value"` // Grams; nil when the weight was not estimated
	Unit      string    `db:"unit"`
	Kcalories *int64    `db:"kcalories"`
	Protein   *int64    `db:"protein"`
	Date      string    `db:"date"` // YYYY-MM-DD
	ImageURL  string    `db:"image_url"`
	CreatedAt time.Time `db:"created_at"`
}
