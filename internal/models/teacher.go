package models

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

const (
	// FeeCurrency is the only currency the backend stores.
	FeeCurrency = "$"
	// FeeUnit is the billing unit appended to every fee.
	FeeUnit = "hour"
	// MinRating and MaxRating bound the rating scale.
	MinRating = 1.0
	MaxRating = 5.0
)

var feePattern = regexp.MustCompile(`^\$(\d+(?:\.\d{2})?)\/hour$`)

// Teacher represents a directory entry as stored by the backend.
type Teacher struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Location string `json:"location"`
	Rating   Rating `json:"rating"`
	Fee      Fee    `json:"fee"`
}

// TeacherInput is the payload sent on create and update; the backend assigns IDs.
type TeacherInput struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Location string `json:"location"`
	Rating   Rating `json:"rating"`
	Fee      Fee    `json:"fee"`
}

// Input strips the server assigned fields.
func (t Teacher) Input() TeacherInput {
	return TeacherInput{Name: t.Name, Subject: t.Subject, Location: t.Location, Rating: t.Rating, Fee: t.Fee}
}

// Initials returns the first letter of each word of the name.
func (t Teacher) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(t.Name) {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

// Rating is a score on the 1-5 scale. The backend may send it as a number or a numeric string.
type Rating float64

// UnmarshalJSON accepts both numeric and quoted numeric ratings.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*r = Rating(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*r = 0
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("rating %q: %w", s, err)
	}
	*r = Rating(n)
	return nil
}

// InRange reports whether the rating sits on the 1-5 scale.
func (r Rating) InRange() bool {
	return float64(r) >= MinRating && float64(r) <= MaxRating
}

// String formats the rating with the shortest exact representation.
func (r Rating) String() string {
	return strconv.FormatFloat(float64(r), 'f', -1, 64)
}

// Star is one glyph of the five star rating widget.
type Star int

const (
	StarEmpty Star = iota
	StarHalf
	StarFull
)

// String names the glyph; it doubles as the CSS modifier.
func (s Star) String() string {
	switch s {
	case StarFull:
		return "full"
	case StarHalf:
		return "half"
	default:
		return "empty"
	}
}

// Stars renders floor(rating) full stars, a half star for any fractional part, then empty stars.
func (r Rating) Stars() []Star {
	value := float64(r)
	full := int(math.Floor(value))
	half := math.Mod(value, 1) != 0
	stars := make([]Star, 0, int(MaxRating))
	for i := 0; i < int(MaxRating); i++ {
		switch {
		case i < full:
			stars = append(stars, StarFull)
		case i == full && half:
			stars = append(stars, StarHalf)
		default:
			stars = append(stars, StarEmpty)
		}
	}
	return stars
}

// Fee is an hourly amount. It is formatted as "$X.XX/hour" only at the wire and display boundary.
type Fee struct {
	Amount   float64
	Currency string
	Unit     string

	// raw keeps the wire text as received so unrecognized values survive a round trip.
	raw string
}

// NewFee builds a canonical hourly fee.
func NewFee(amount float64) Fee {
	if amount == 0 {
		amount = 0 // drops the sign of -0
	}
	return Fee{Amount: amount, Currency: FeeCurrency, Unit: FeeUnit}
}

// ParseFee reads a wire fee. The bool is false when the text does not follow "$X.XX/hour";
// the returned Fee then carries the text verbatim and a zero amount.
func ParseFee(text string) (Fee, bool) {
	match := feePattern.FindStringSubmatch(text)
	if match == nil {
		return Fee{Currency: FeeCurrency, Unit: FeeUnit, raw: text}, false
	}
	amount, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return Fee{Currency: FeeCurrency, Unit: FeeUnit, raw: text}, false
	}
	return Fee{Amount: amount, Currency: FeeCurrency, Unit: FeeUnit, raw: text}, true
}

// String returns the wire text.
func (f Fee) String() string {
	if f.raw != "" {
		return f.raw
	}
	c := cents(f.Amount)
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%s%d.%02d/%s", FeeCurrency, sign, c/100, c%100, FeeUnit)
}

// cents rounds amount to whole cents using its exact binary value, with exact
// halves rounded away from zero. 0.125 becomes 13 while 1.005, stored just below
// the half, becomes 100.
func cents(amount float64) int64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	scaled := new(big.Float).SetPrec(128).SetFloat64(math.Abs(amount))
	scaled.Mul(scaled, big.NewFloat(100))
	whole, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(scaled, new(big.Float).SetInt(whole))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		whole.Add(whole, big.NewInt(1))
	}
	c := whole.Int64()
	if amount < 0 {
		c = -c
	}
	return c
}

// FormValue recovers the numeric part for an edit form. It is empty when the
// wire text does not match the fixed fee pattern.
func (f Fee) FormValue() string {
	match := feePattern.FindStringSubmatch(f.String())
	if match == nil {
		return ""
	}
	return match[1]
}

// MarshalJSON encodes the fee as its wire string.
func (f Fee) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes a wire fee string. Bare numbers are accepted as amounts.
func (f *Fee) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*f, _ = ParseFee(text)
		return nil
	}
	var amount float64
	if err := json.Unmarshal(data, &amount); err != nil {
		return fmt.Errorf("fee: %w", err)
	}
	*f = NewFee(amount)
	return nil
}
