package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Tier is a subscription level. The numeric value is the rank.
type Tier int16

const (
	TierFree Tier = iota
	TierSilver
	TierGold
	TierPlatinum
)

// TierStrings holds the wire name of each tier, indexed by rank
var TierStrings = []string{
	"free",
	"silver",
	"gold",
	"platinum",
}

// ParseTier maps a tier name to its Tier. Names are case sensitive.
func ParseTier(name string) (Tier, error) {
	for i, s := range TierStrings {
		if s == name {
			return Tier(i), nil
		}
	}
	return TierFree, fmt.Errorf("%w: %q", ErrUnknownTier, name)
}

// AllTiers returns every tier in ascending rank
func AllTiers() []Tier {
	return []Tier{TierFree, TierSilver, TierGold, TierPlatinum}
}

// TiersUpTo returns the tiers whose rank does not exceed t, in ascending rank
func TiersUpTo(t Tier) []Tier {
	if !t.Valid() {
		return nil
	}
	return AllTiers()[:t.Rank()+1]
}

// Rank returns the position of the tier in the ordering free < silver < gold < platinum
func (t Tier) Rank() int {
	return int(t)
}

// Valid reports whether t is one of the four known tiers
func (t Tier) Valid() bool {
	return t >= TierFree && t <= TierPlatinum
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int16(t))
	}
	return TierStrings[t]
}

// Label is the upper-cased name shown on badges and lock overlays
func (t Tier) Label() string {
	return strings.ToUpper(t.String())
}

// MarshalText encodes the tier as its lowercase name
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int16(t))
	}
	return []byte(TierStrings[t]), nil
}

// UnmarshalText decodes a lowercase tier name
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON encodes the tier as a JSON string
func (t Tier) MarshalJSON() ([]byte, error) {
	text, err := t.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON decodes a JSON string tier name
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownTier, string(data))
	}
	return t.UnmarshalText([]byte(s))
}

// Scan implements sql.Scanner for text columns
func (t *Tier) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	case nil:
		*t = TierFree
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Tier", src)
	}
}

// Value implements driver.Valuer
func (t Tier) Value() (driver.Value, error) {
	text, err := t.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}
