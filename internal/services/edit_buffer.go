package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"events-admin/internal/codec"
	"events-admin/internal/models"
)

// DateTimeInputLayout is the layout of a datetime-local form value
const DateTimeInputLayout = "2006-01-02T15:04"

var (
	ErrUnknownField = errors.New("unknown event field")
	ErrFieldKind    = errors.New("field does not accept this kind of value")
	ErrInvalidValue = errors.New("invalid field value")
	ErrNameRequired = errors.New("event name is required")
)

// Field names an editable column of the events table
type Field string

const (
	FieldName             Field = "event"
	FieldLocation         Field = "location_optional"
	FieldVenueType        Field = "venue_type"
	FieldEcosystemFocus   Field = "ecosystem_focus"
	FieldSeason           Field = "season"
	FieldTwitter          Field = "twitter"
	FieldFarcaster        Field = "farcaster"
	FieldDiscord          Field = "discord"
	FieldTelegram         Field = "telegram"
	FieldLogo             Field = "logo"
	FieldBannerImage      Field = "banner_image"
	FieldStartValue       Field = "start_value"
	FieldEndValue         Field = "end_value"
	FieldLink             Field = "link"
	FieldCategoryOptional Field = "category_optional"
	FieldThemeOptional    Field = "theme_optional"
	FieldApproved         Field = "approved"
	FieldHighlighted      Field = "highlighted"
)

// FieldKind says which setter a field accepts
type FieldKind int

const (
	KindText FieldKind = iota
	KindTime
	KindFlag
	KindList
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTime:
		return "datetime"
	case KindFlag:
		return "flag"
	case KindList:
		return "list"
	}
	return "unknown"
}

// AllFields lists the editable fields in form order
var AllFields = []Field{
	FieldName, FieldLocation, FieldStartValue, FieldEndValue, FieldVenueType,
	FieldEcosystemFocus, FieldSeason, FieldLink, FieldTwitter, FieldFarcaster,
	FieldDiscord, FieldTelegram, FieldLogo, FieldBannerImage, FieldCategoryOptional,
	FieldThemeOptional, FieldApproved, FieldHighlighted,
}

// ListFields are the JSON-array encoded fields
var ListFields = []Field{FieldLink, FieldCategoryOptional, FieldThemeOptional}

var fieldKinds = map[Field]FieldKind{
	FieldName:             KindText,
	FieldLocation:         KindText,
	FieldVenueType:        KindText,
	FieldEcosystemFocus:   KindText,
	FieldSeason:           KindText,
	FieldTwitter:          KindText,
	FieldFarcaster:        KindText,
	FieldDiscord:          KindText,
	FieldTelegram:         KindText,
	FieldLogo:             KindText,
	FieldBannerImage:      KindText,
	FieldStartValue:       KindTime,
	FieldEndValue:         KindTime,
	FieldLink:             KindList,
	FieldCategoryOptional: KindList,
	FieldThemeOptional:    KindList,
	FieldApproved:         KindFlag,
	FieldHighlighted:      KindFlag,
}

// Kind returns the kind of f, or false for an unknown field
func (f Field) Kind() (FieldKind, bool) {
	k, ok := fieldKinds[f]
	return k, ok
}

// ParseField validates a field name
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := fieldKinds[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// stringRef returns the storage of a text or list field
func stringRef(e *models.Event, f Field) **string {
	switch f {
	case FieldName:
		return &e.Name
	case FieldLocation:
		return &e.Location
	case FieldVenueType:
		return &e.VenueType
	case FieldEcosystemFocus:
		return &e.EcosystemFocus
	case FieldSeason:
		return &e.Season
	case FieldTwitter:
		return &e.Twitter
	case FieldFarcaster:
		return &e.Farcaster
	case FieldDiscord:
		return &e.Discord
	case FieldTelegram:
		return &e.Telegram
	case FieldLogo:
		return &e.Logo
	case FieldBannerImage:
		return &e.BannerImage
	case FieldLink:
		return &e.Link
	case FieldCategoryOptional:
		return &e.CategoryOptional
	case FieldThemeOptional:
		return &e.ThemeOptional
	}
	return nil
}

func timeRef(e *models.Event, f Field) **time.Time {
	switch f {
	case FieldStartValue:
		return &e.StartValue
	case FieldEndValue:
		return &e.EndValue
	}
	return nil
}

func flagRef(e *models.Event, f Field) **bool {
	switch f {
	case FieldApproved:
		return &e.Approved
	case FieldHighlighted:
		return &e.Highlighted
	}
	return nil
}

// EditBuffer stages changes to one event without touching the fetched list
type EditBuffer struct {
	original models.Event
	draft    models.Event
	loc      *time.Location
	saving   bool
	errMsg   string
}

func newEditBuffer(event models.Event, loc *time.Location) *EditBuffer {
	if loc == nil {
		loc = time.Local
	}
	return &EditBuffer{
		original: event,
		draft:    event,
		loc:      loc,
	}
}

// EventID returns the id of the event being edited
func (b *EditBuffer) EventID() int64 {
	return b.draft.ID
}

// Draft returns a copy of the staged event
func (b *EditBuffer) Draft() models.Event {
	return b.draft
}

func (b *EditBuffer) kindOf(f Field, want FieldKind) error {
	k, ok := f.Kind()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if k != want {
		return fmt.Errorf("%w: %s is a %s field", ErrFieldKind, f, k)
	}
	return nil
}

// Set assigns a form value to any field, dispatching on the field kind.
// Flags accept "true" or "false".
func (b *EditBuffer) Set(f Field, value string) error {
	k, ok := f.Kind()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}

	switch k {
	case KindText:
		return b.SetText(f, value)
	case KindTime:
		return b.SetTime(f, value)
	case KindList:
		return b.SetList(f, value)
	case KindFlag:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", ErrInvalidValue, f)
		}
		return b.SetFlag(f, v)
	}
	return fmt.Errorf("%w: %q", ErrUnknownField, f)
}

// SetText stores value as is. The enumerated fields (venue type, ecosystem
// focus) clear to null on "" and reject values outside their enumeration.
func (b *EditBuffer) SetText(f Field, value string) error {
	if err := b.kindOf(f, KindText); err != nil {
		return err
	}

	ref := stringRef(&b.draft, f)
	switch f {
	case FieldVenueType, FieldEcosystemFocus:
		if value == "" {
			*ref = nil
			return nil
		}
		valid := models.IsValidVenueType(value)
		if f == FieldEcosystemFocus {
			valid = models.IsValidEcosystemFocus(value)
		}
		if !valid {
			return fmt.Errorf("%w: %q is not a valid %s", ErrInvalidValue, value, f)
		}
	}

	*ref = &value
	return nil
}

// SetTime parses a datetime-local value in the dashboard location, or an
// RFC 3339 instant. An empty value clears the field.
func (b *EditBuffer) SetTime(f Field, value string) error {
	if err := b.kindOf(f, KindTime); err != nil {
		return err
	}

	ref := timeRef(&b.draft, f)
	value = strings.TrimSpace(value)
	if value == "" {
		*ref = nil
		return nil
	}

	t, err := time.ParseInLocation(DateTimeInputLayout, value, b.loc)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
	}
	if err != nil {
		return fmt.Errorf("%w: %s expects YYYY-MM-DDTHH:MM or RFC 3339", ErrInvalidValue, f)
	}

	*ref = &t
	return nil
}

// SetFlag stores a status flag
func (b *EditBuffer) SetFlag(f Field, value bool) error {
	if err := b.kindOf(f, KindFlag); err != nil {
		return err
	}
	*flagRef(&b.draft, f) = &value
	return nil
}

// SetList takes the comma-separated editing form and stores the encoded list
func (b *EditBuffer) SetList(f Field, input string) error {
	if err := b.kindOf(f, KindList); err != nil {
		return err
	}
	encoded := codec.EncodeInput(input)
	*stringRef(&b.draft, f) = &encoded
	return nil
}

// ListText returns the comma-separated editing form of a list field
func (b *EditBuffer) ListText(f Field) (string, error) {
	if err := b.kindOf(f, KindList); err != nil {
		return "", err
	}
	return codec.JoinList(codec.Decode(*stringRef(&b.draft, f))), nil
}

// DateTimeText returns the datetime-local form of a time field, or ""
func (b *EditBuffer) DateTimeText(f Field) (string, error) {
	if err := b.kindOf(f, KindTime); err != nil {
		return "", err
	}
	t := *timeRef(&b.draft, f)
	if t == nil {
		return "", nil
	}
	return t.In(b.loc).Format(DateTimeInputLayout), nil
}

// validate checks what the form requires before a save
func (b *EditBuffer) validate() error {
	if b.draft.Name == nil || strings.TrimSpace(*b.draft.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// ChangedFields lists the fields whose staged value differs from the seed
func (b *EditBuffer) ChangedFields() []Field {
	var changed []Field
	for _, f := range AllFields {
		k, _ := f.Kind()
		var same bool
		switch k {
		case KindText, KindList:
			same = equalPtr(*stringRef(&b.original, f), *stringRef(&b.draft, f))
		case KindTime:
			same = equalTime(*timeRef(&b.original, f), *timeRef(&b.draft, f))
		case KindFlag:
			same = equalPtr(*flagRef(&b.original, f), *flagRef(&b.draft, f))
		}
		if !same {
			changed = append(changed, f)
		}
	}
	return changed
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// EditView is a read-only snapshot of an edit buffer
type EditView struct {
	EventID int64            `json:"event_id"`
	Draft   models.Event     `json:"draft"`
	Lists   map[Field]string `json:"lists"`
	Times   map[Field]string `json:"times"`
	Changed []Field          `json:"changed"`
	Saving  bool             `json:"saving"`
	Error   string           `json:"error,omitempty"`
}

func (b *EditBuffer) view() EditView {
	v := EditView{
		EventID: b.draft.ID,
		Draft:   b.draft,
		Lists:   make(map[Field]string, len(ListFields)),
		Times:   make(map[Field]string, 2),
		Changed: b.ChangedFields(),
		Saving:  b.saving,
		Error:   b.errMsg,
	}
	for _, f := range ListFields {
		v.Lists[f], _ = b.ListText(f)
	}
	for _, f := range []Field{FieldStartValue, FieldEndValue} {
		v.Times[f], _ = b.DateTimeText(f)
	}
	return v
}
