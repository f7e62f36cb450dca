package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/rally/internal/domain/model"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrInvalidDate is returned when a date query cannot be read.
var ErrInvalidDate = errors.New("invalid date")

// dateLayouts are tried before natural language parsing.
var dateLayouts = []string{DateLayout, "02/01/2006"}

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseDate reads a calendar date from text. Besides the fixed layouts it
// accepts expressions like "yesterday" or "last friday", resolved against
// now. An empty text yields the zero time, which callers treat as the
// latest day.
func ParseDate(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return model.Day(t), nil
		}
	}
	r, err := dateParser.Parse(strings.ToLower(text), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidDate, text, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	return model.Day(r.Time), nil
}
