package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGender(t *testing.T) {
	tests := map[string]Gender{
		"male":   GenderMale,
		"Male":   GenderMale,
		"M":      GenderMale,
		"female": GenderFemale,
		" f ":    GenderFemale,
		"other":  GenderOther,
		"":       GenderOther,
		"x":      GenderOther,
	}

	for in, expected := range tests {
		assert.Equal(t, expected, NormalizeGender(in), "input %q", in)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{"Jean Bosco Mugisha", "Jean", "Bosco Mugisha"},
		{"Aline", "Aline", ""},
		{"  Eric   Ndayisaba ", "Eric", "Ndayisaba"},
		{"", "", ""},
	}

	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first)
		assert.Equal(t, tt.last, last)
	}
}

func TestFullName(t *testing.T) {
	m := &Member{FirstName: "Aline"}
	assert.Equal(t, "Aline", m.FullName())

	m.LastName = "Uwase"
	assert.Equal(t, "Aline Uwase", m.FullName())
}
