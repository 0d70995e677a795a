package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bitelog/bite/internal/model"
	"github.com/bitelog/bite/internal/validation"
	"golang.org/x/text/unicode/norm"
)

var ErrInvalidDate = errors.New("invalid date")

// PrepareEatenProduct maps an accepted analysis to the row to insert.
//
// The date is the trimmed caller value when present, otherwise today in loc.
// Numeric fields are rounded and only set when the model reported a non-zero
// value that fits the column, so a reported zero and a missing value both end
// up NULL.
func PrepareEatenProduct(a model.FoodAnalysis, userID, publicURL, date string, now time.Time, loc *time.Location) (*model.EatenProduct, error) {
	day := strings.TrimSpace(date)
	if day == "" {
		if loc == nil {
			loc = time.Local
		}
		day = now.In(loc).Format(time.DateOnly)
	} else if err := validation.ValidateDate(day); err != nil {
		return nil, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, day)
	}

	name := norm.NFC.String(strings.TrimSpace(a.FoodName))
	if name == "" {
		name = model.DefaultProductName
	}

	return &model.EatenProduct{
		UserID:    userID,
		Name:      name,
		Value:     roundedIfSet(a.Weight),
		Unit:      model.UnitGrams,
		Kcalories: roundedIfSet(a.Calories),
		Protein:   roundedIfSet(a.Protein),
		Date:      day,
		ImageURL:  publicURL,
		CreatedAt: now.UTC(),
	}, nil
}

// roundedIfSet drops a reported zero and anything the INTEGER columns cannot
// hold: NaN, negatives and values beyond MaxInt32.
func roundedIfSet(v *float64) *int64 {
	if v == nil || *v == 0 || math.IsNaN(*v) {
		return nil
	}
	r := math.Round(*v)
	if r < 0 || r > math.MaxInt32 {
		return nil
	}
	n := int64(r)
	return &n
}
