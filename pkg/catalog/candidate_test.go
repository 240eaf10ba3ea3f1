package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate() Candidate {
	return Candidate{
		Title:    "Tosca",
		Date:     "July 4",
		Time:     "19:00",
		Cover:    "tosca.jpg",
		Composer: "Puccini",
		Type:     KindOpera,
	}
}

func TestCandidateValidate_Valid(t *testing.T) {
	assert.NoError(t, validCandidate().Validate())
}

func TestCandidateValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Candidate)
		field  string
	}{
		{"missing title", func(c *Candidate) { c.Title = "" }, "title"},
		{"title with spaces", func(c *Candidate) { c.Title = "La Boheme" }, "title"},
		{"missing date", func(c *Candidate) { c.Date = "" }, "date"},
		{"abbreviated month", func(c *Candidate) { c.Date = "Jul 4" }, "date"},
		{"day out of range", func(c *Candidate) { c.Date = "July 32" }, "date"},
		{"day zero", func(c *Candidate) { c.Date = "July 0" }, "date"},
		{"missing time", func(c *Candidate) { c.Time = "" }, "time"},
		{"hour out of range", func(c *Candidate) { c.Time = "24:00" }, "time"},
		{"single digit hour", func(c *Candidate) { c.Time = "7:30" }, "time"},
		{"cover with spaces", func(c *Candidate) { c.Cover = "my cover.jpg" }, "cover"},
		{"missing composer", func(c *Candidate) { c.Composer = "" }, "composer"},
		{"missing type", func(c *Candidate) { c.Type = "" }, "type"},
		{"unknown type", func(c *Candidate) { c.Type = "musical" }, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			tt.mutate(&c)

			err := c.Validate()
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			verr := err.(*ValidationError)
			require.Len(t, verr.Fields, 1)
			assert.NotNil(t, verr.Field(tt.field))
		})
	}
}

func TestCandidateValidate_CollectsAllFields(t *testing.T) {
	err := Candidate{}.Validate()
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Len(t, verr.Fields, 6)
	assert.Contains(t, err.Error(), "Title is required")
}

func TestCandidateEventKeepsFields(t *testing.T) {
	c := validCandidate()
	e := c.Event("42")
	assert.Equal(t, ID("42"), e.ID)
	assert.Equal(t, c.Title, e.Title)
	assert.Equal(t, c.Type, e.Type)
}
