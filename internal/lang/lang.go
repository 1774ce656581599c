// Package lang holds the user-facing strings of the assignment module and the
// helpers that format dates and durations for display.
package lang

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
)

// Strings resolves string identifiers to translated text.
type Strings struct {
	translator ut.Translator
	locale     locales.Translator
	location   *time.Location
}

// New registers the bundled English strings.
func New() (*Strings, error) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	for key, text := range english {
		if err := translator.Add(key, text, false); err != nil {
			return nil, fmt.Errorf("register string %q: %w", key, err)
		}
	}

	return &Strings{translator: translator, locale: _en, location: time.UTC}, nil
}

// MustNew is New for package-level wiring where the bundled strings are known to be valid.
func MustNew() *Strings {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// WithLocation returns a copy that renders dates in loc.
func (s *Strings) WithLocation(loc *time.Location) *Strings {
	if loc == nil {
		return s
	}
	clone := *s
	clone.location = loc
	return &clone
}

// Translator exposes the underlying translator, e.g. for validator messages.
func (s *Strings) Translator() ut.Translator {
	return s.translator
}

// Get returns the string for key with {0}, {1}... replaced by params.
// Unknown keys render as [[key]] so missing strings are visible.
func (s *Strings) Get(key string, params ...string) string {
	text, err := s.translator.T(key, params...)
	if err != nil || text == "" {
		return "[[" + key + "]]"
	}
	return text
}

// Component looks up a string owned by a sub-plugin, e.g. Component("assignsubmission_file", "countfiles", "3").
func (s *Strings) Component(component, key string, params ...string) string {
	return s.Get(component+":"+key, params...)
}

// UserDate renders a timestamp the way dates are shown throughout the module.
func (s *Strings) UserDate(t time.Time) string {
	local := t.In(s.location)
	return s.locale.FmtDateFull(local) + ", " + s.locale.FmtTimeShort(local)
}

// FormatDuration renders an interval as "2 days 3 hours", using its absolute value.
func (s *Strings) FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)

	units := []struct {
		seconds  int64
		singular string
		plural   string
	}{
		{365 * 24 * 3600, "year", "years"},
		{24 * 3600, "day", "days"},
		{3600, "hour", "hours"},
		{60, "min", "mins"},
		{1, "sec", "secs"},
	}

	parts := make([]string, 0, 2)
	for _, unit := range units {
		count := total / unit.seconds
		total -= count * unit.seconds
		if count == 0 {
			continue
		}
		label := s.Get("time:" + unit.plural)
		if count == 1 {
			label = s.Get("time:" + unit.singular)
		}
		parts = append(parts, fmt.Sprintf("%d %s", count, label))
		// two most significant units are enough for display
		if len(parts) == 2 {
			break
		}
	}

	if len(parts) == 0 {
		return s.Get("time:now")
	}
	return strings.Join(parts, " ")
}
