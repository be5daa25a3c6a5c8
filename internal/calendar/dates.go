package calendar

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DateParser converts natural-language date expressions to concrete times.
type DateParser struct {
	parser *when.Parser
	loc    *time.Location
}

// NewDateParser creates a parser resolving dates in the given IANA timezone.
// An empty or unknown zone falls back to Europe/Berlin, matching the
// assistant's default audience.
func NewDateParser(timezone string) *DateParser {
	loc, err := time.LoadLocation(timezone)
	if timezone == "" || err != nil {
		loc, _ = time.LoadLocation("Europe/Berlin")
	}

	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)

	return &DateParser{parser: p, loc: loc}
}

// Parse resolves a natural-language expression relative to base. Expressions
// that already look like RFC 3339 are accepted verbatim.
func (d *DateParser) Parse(expr string, base time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		return t, nil
	}

	r, err := d.parser.Parse(expr, base.In(d.loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", expr, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not parse date string %q", expr)
	}
	return r.Time, nil
}

// ParseToISO8601 resolves a natural-language expression relative to now and
// returns it formatted as ISO 8601 in the parser's timezone.
func (d *DateParser) ParseToISO8601(expr string) (string, error) {
	t, err := d.Parse(expr, time.Now())
	if err != nil {
		return "", err
	}
	return t.In(d.loc).Format(time.RFC3339), nil
}
