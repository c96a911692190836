// Package search implements the free-text record filter.
package search

import (
	"strings"

	"simahasiswa-backend-go/internal/models"
)

// Filter returns the subsequence of records matching query, preserving input
// order. The empty query matches everything. A record survives when the
// query is a case-insensitive substring of its nim, jurusan, nama, or the
// derived initials of nama. Initials are deliberately not matched against
// jurusan.
func Filter(records []models.StudentRecord, query string) []models.StudentRecord {
	if query == "" {
		return records
	}
	q := strings.ToLower(query)
	out := make([]models.StudentRecord, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.NIM), q) ||
			strings.Contains(strings.ToLower(rec.Jurusan), q) ||
			strings.Contains(strings.ToLower(rec.Nama), q) ||
			strings.Contains(strings.ToLower(Initials(rec.Nama)), q) {
			out = append(out, rec)
		}
	}
	return out
}

// Initials derives the upper-cased first letter of each whitespace-separated
// token of nama, concatenated: "Budi Santoso" -> "BS".
func Initials(nama string) string {
	var b strings.Builder
	for _, token := range strings.Fields(nama) {
		runes := []rune(token)
		b.WriteString(strings.ToUpper(string(runes[0])))
	}
	return b.String()
}
