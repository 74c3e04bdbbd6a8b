package matches

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Player struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

type PlayerInput struct {
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

func (in PlayerInput) Normalize() (PlayerInput, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return PlayerInput{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return PlayerInput{Name: name, PhoneNumber: NormalizePhone(in.PhoneNumber)}, nil
}

// NormalizePhone trims the number; blank numbers clear the field.
func NormalizePhone(raw *string) *string {
	return trimmedOrNil(raw)
}

// NextMatch is an upcoming fixture shown on the home page.
type NextMatch struct {
	ID        int64   `json:"id"`
	MatchDate Date    `json:"matchDate"`
	MatchTime *string `json:"matchTime,omitempty"`
	Opponent  string  `json:"opponent"`
	Venue     *string `json:"venue,omitempty"`
	Memo      *string `json:"memo,omitempty"`
}

// Column widths of next_matches, counted in characters.
const (
	MaxOpponentLen = 100
	MaxVenueLen    = 200
	MaxMemoLen     = 500
)

type NextMatchInput struct {
	MatchDate Date    `json:"matchDate"`
	MatchTime *string `json:"matchTime,omitempty"`
	Opponent  string  `json:"opponent"`
	Venue     *string `json:"venue,omitempty"`
	Memo      *string `json:"memo,omitempty"`
}

func (in NextMatchInput) Normalize() (NextMatchInput, error) {
	if in.MatchDate.IsZero() {
		return NextMatchInput{}, fmt.Errorf("%w: matchDate is required", ErrInvalidInput)
	}
	opponent := strings.TrimSpace(in.Opponent)
	if opponent == "" {
		return NextMatchInput{}, fmt.Errorf("%w: opponent is required", ErrInvalidInput)
	}
	matchTime, err := NormalizeTime(in.MatchTime)
	if err != nil {
		return NextMatchInput{}, err
	}
	out := NextMatchInput{
		MatchDate: in.MatchDate,
		MatchTime: matchTime,
		Opponent:  opponent,
		Venue:     trimmedOrNil(in.Venue),
		Memo:      trimmedOrNil(in.Memo),
	}
	if err := checkLen("opponent", &out.Opponent, MaxOpponentLen); err != nil {
		return NextMatchInput{}, err
	}
	if err := checkLen("venue", out.Venue, MaxVenueLen); err != nil {
		return NextMatchInput{}, err
	}
	if err := checkLen("memo", out.Memo, MaxMemoLen); err != nil {
		return NextMatchInput{}, err
	}
	return out, nil
}

func checkLen(field string, v *string, limit int) error {
	if v != nil && utf8.RuneCountInString(*v) > limit {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, field, limit)
	}
	return nil
}

func trimmedOrNil(raw *string) *string {
	if raw == nil {
		return nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil
	}
	return &v
}
