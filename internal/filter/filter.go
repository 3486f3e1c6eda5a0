// Package filter narrows an already fetched event list by the dashboard
// criteria. Every non-empty criterion must hold; empty criteria are skipped.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"events-admin/internal/models"
)

// DateLayout is the calendar date format of StartDate and EndDate
const DateLayout = "2006-01-02"

// Tri-state selector values for Approved and Highlighted
const (
	FlagAny   = ""
	FlagTrue  = "true"
	FlagFalse = "false"
)

var ErrInvalidCriteria = errors.New("invalid filter criteria")

// Criteria is the transient filter state of one dashboard session
type Criteria struct {
	Search         string `json:"search" form:"search"`
	VenueType      string `json:"venue_type" form:"venue_type" binding:"omitempty,venue_type"`
	Approved       string `json:"approved" form:"approved" binding:"omitempty,oneof=true false"`
	Highlighted    string `json:"highlighted" form:"highlighted" binding:"omitempty,oneof=true false"`
	EcosystemFocus string `json:"ecosystem_focus" form:"ecosystem_focus" binding:"omitempty,ecosystem_focus"`
	StartDate      string `json:"start_date" form:"start_date" binding:"omitempty,calendar_date"`
	EndDate        string `json:"end_date" form:"end_date" binding:"omitempty,calendar_date"`
}

// IsEmpty reports whether no criterion is set
func (c Criteria) IsEmpty() bool {
	return c.ActiveCount() == 0
}

// ActiveCount returns the number of non-empty criteria
func (c Criteria) ActiveCount() int {
	n := 0
	for _, v := range []string{c.Search, c.VenueType, c.Approved, c.Highlighted, c.EcosystemFocus, c.StartDate, c.EndDate} {
		if v != "" {
			n++
		}
	}
	return n
}

// Validate checks selector values and date formats
func (c Criteria) Validate() error {
	if c.VenueType != "" && !models.IsValidVenueType(c.VenueType) {
		return fmt.Errorf("%w: unknown venue type %q", ErrInvalidCriteria, c.VenueType)
	}
	if c.EcosystemFocus != "" && !models.IsValidEcosystemFocus(c.EcosystemFocus) {
		return fmt.Errorf("%w: unknown ecosystem focus %q", ErrInvalidCriteria, c.EcosystemFocus)
	}
	if !isFlagSelector(c.Approved) {
		return fmt.Errorf("%w: approved must be true, false or empty", ErrInvalidCriteria)
	}
	if !isFlagSelector(c.Highlighted) {
		return fmt.Errorf("%w: highlighted must be true, false or empty", ErrInvalidCriteria)
	}
	if c.StartDate != "" {
		if _, err := time.Parse(DateLayout, c.StartDate); err != nil {
			return fmt.Errorf("%w: start date must be YYYY-MM-DD", ErrInvalidCriteria)
		}
	}
	if c.EndDate != "" {
		if _, err := time.Parse(DateLayout, c.EndDate); err != nil {
			return fmt.Errorf("%w: end date must be YYYY-MM-DD", ErrInvalidCriteria)
		}
	}
	return nil
}

// With returns a copy of c with the named criterion set to value.
// Names are the JSON keys of Criteria.
func (c Criteria) With(name, value string) (Criteria, error) {
	switch name {
	case "search":
		c.Search = value
	case "venue_type":
		c.VenueType = value
	case "approved":
		c.Approved = value
	case "highlighted":
		c.Highlighted = value
	case "ecosystem_focus":
		c.EcosystemFocus = value
	case "start_date":
		c.StartDate = value
	case "end_date":
		c.EndDate = value
	default:
		return c, fmt.Errorf("%w: unknown criterion %q", ErrInvalidCriteria, name)
	}
	return c, nil
}

func isFlagSelector(v string) bool {
	return v == FlagAny || v == FlagTrue || v == FlagFalse
}

// Apply returns the events matching every active criterion, in input order.
// Dates are taken as midnight in loc (time.Local when loc is nil).
// The input slice is never modified.
func Apply(events []models.Event, c Criteria, loc *time.Location) []models.Event {
	if c.IsEmpty() {
		out := make([]models.Event, len(events))
		copy(out, events)
		return out
	}

	preds := compile(c, loc)
	out := make([]models.Event, 0, len(events))
	for i := range events {
		if matchAll(&events[i], preds) {
			out = append(out, events[i])
		}
	}
	return out
}

type predicate func(e *models.Event) bool

func matchAll(e *models.Event, preds []predicate) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}

func compile(c Criteria, loc *time.Location) []predicate {
	if loc == nil {
		loc = time.Local
	}

	var preds []predicate

	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		preds = append(preds, func(e *models.Event) bool {
			// theme_optional is matched on its raw encoded text
			return containsFold(e.Name, needle) ||
				containsFold(e.Location, needle) ||
				containsFold(e.ThemeOptional, needle)
		})
	}

	if c.VenueType != "" {
		preds = append(preds, func(e *models.Event) bool {
			return e.VenueType != nil && *e.VenueType == c.VenueType
		})
	}

	if c.Approved != "" {
		want := c.Approved == FlagTrue
		preds = append(preds, func(e *models.Event) bool {
			return e.IsApproved() == want
		})
	}

	if c.Highlighted != "" {
		want := c.Highlighted == FlagTrue
		preds = append(preds, func(e *models.Event) bool {
			return e.IsHighlighted() == want
		})
	}

	if c.EcosystemFocus != "" {
		preds = append(preds, func(e *models.Event) bool {
			return e.EcosystemFocus != nil && *e.EcosystemFocus == c.EcosystemFocus
		})
	}

	if c.StartDate != "" {
		from, err := time.ParseInLocation(DateLayout, c.StartDate, loc)
		preds = append(preds, func(e *models.Event) bool {
			return err == nil && e.StartValue != nil && !e.StartValue.Before(from)
		})
	}

	if c.EndDate != "" {
		to, err := time.ParseInLocation(DateLayout, c.EndDate, loc)
		preds = append(preds, func(e *models.Event) bool {
			return err == nil && e.EndValue != nil && !e.EndValue.After(to)
		})
	}

	return preds
}

func containsFold(field *string, lowerNeedle string) bool {
	return field != nil && strings.Contains(strings.ToLower(*field), lowerNeedle)
}
