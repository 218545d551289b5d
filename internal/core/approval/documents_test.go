package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"forward slashes", "/uploads/tds/report.pdf", "report.pdf"},
		{"back slashes", `C:\uploads\tds\report.pdf`, "report.pdf"},
		{"mixed separators and spaces", "/uploads/a,b/report v2.pdf", "report v2.pdf"},
		{"no separator", "report.pdf", "report.pdf"},
		{"empty", "", ""},
		{"trailing separator", "/uploads/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.ref))
		})
	}
}

func TestSplitDocuments(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  []string
	}{
		{"three documents", "a.pdf,b.pdf,c.pdf", []string{"a.pdf", "b.pdf", "c.pdf"}},
		{"single document", "/uploads/a.pdf", []string{"/uploads/a.pdf"}},
		{"trailing comma", "a.pdf,", []string{"a.pdf"}},
		{"surrounding whitespace", " a.pdf , b.pdf ", []string{"a.pdf", "b.pdf"}},
		{"empty field", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitDocuments(tt.field))
		})
	}
}

func TestSplitDocuments_EachResolvesOwnName(t *testing.T) {
	docs := SplitDocuments("/uploads/a.pdf,/uploads/b.pdf,/uploads/c.pdf")

	assert.Len(t, docs, 3)
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, DisplayName(d))
	}
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, names)
}
