package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	noSpacePattern = regexp.MustCompile(`^\S+$`)
	datePattern    = regexp.MustCompile(`^(January|February|March|April|May|June|July|August|September|October|November|December) ([1-9]|[12][0-9]|3[01])$`)
	timePattern    = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// Candidate is a new event as entered by a user, before the store has
// accepted it and assigned an identifier.
type Candidate struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Cover    string `json:"cover"`
	Composer string `json:"composer"`
	Type     Kind   `json:"type"`
}

// FieldError describes why a single candidate field was rejected.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field violation of a candidate.
type ValidationError struct {
	Fields []*FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "invalid event: " + strings.Join(msgs, "; ")
}

// Field returns the violation recorded for name, if any.
func (e *ValidationError) Field(name string) *FieldError {
	for _, f := range e.Fields {
		if f.Field == name {
			return f
		}
	}
	return nil
}

// Validate checks all six fields and returns a *ValidationError listing
// every problem, or nil.
func (c Candidate) Validate() error {
	var fields []*FieldError
	add := func(field, msg string) {
		fields = append(fields, &FieldError{Field: field, Message: msg})
	}

	noSpaces := func(field, value, label string) {
		switch {
		case value == "":
			add(field, label+" is required")
		case !noSpacePattern.MatchString(value):
			add(field, label+" cannot contain spaces")
		}
	}
	noSpaces("title", c.Title, "Title")

	switch {
	case c.Date == "":
		add("date", "Date is required")
	case !datePattern.MatchString(c.Date):
		add("date", "Enter a valid date (e.g., July 4)")
	}

	switch {
	case c.Time == "":
		add("time", "Time is required")
	case !timePattern.MatchString(c.Time):
		add("time", "Enter a valid time (e.g., 19:00)")
	}

	noSpaces("composer", c.Composer, "Composer")
	noSpaces("cover", c.Cover, "Cover")

	switch {
	case c.Type == "":
		add("type", "Type is required")
	case !c.Type.Valid():
		add("type", "Type must be opera or ballet")
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// IsValidationError reports whether err carries candidate field violations.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// Event builds the stored form of the candidate under the given id. Only
// catalog stores call this.
func (c Candidate) Event(id ID) Event {
	return Event{
		ID:       id,
		Title:    c.Title,
		Date:     c.Date,
		Time:     c.Time,
		Cover:    c.Cover,
		Composer: c.Composer,
		Type:     c.Type,
	}
}
