// Package validate holds the pure form-validation rules. Validation is
// synchronous and side-effect free: raw field input goes in, a field->message
// map comes out, and an empty map means the form is valid.
//
// Rule order is fixed per field: emptiness first, then length/format. Only
// the first failing rule's message is kept.
package validate

import (
	"strings"

	"simahasiswa-backend-go/internal/identity"
)

// Errors maps a field name to its single human-readable message.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

// Jurusans is the fixed set of selectable departments.
var Jurusans = []string{
	"Teknik Informatika",
	"Sistem Informasi",
	"Teknik Elektro",
}

func jurusanKnown(jurusan string) bool {
	for _, j := range Jurusans {
		if j == jurusan {
			return true
		}
	}
	return false
}

type StudentInput struct {
	Nama    string
	NIM     string
	Jurusan string
}

func Student(input StudentInput) Errors {
	errs := Errors{}

	if strings.TrimSpace(input.Nama) == "" {
		errs["nama"] = "Nama harus diisi"
	}

	nim := strings.TrimSpace(input.NIM)
	if nim == "" {
		errs["nim"] = "NIM harus diisi"
	} else if len([]rune(nim)) < 8 {
		errs["nim"] = "NIM minimal 8 karakter"
	}

	if input.Jurusan == "" {
		errs["jurusan"] = "Jurusan harus dipilih"
	} else if !jurusanKnown(input.Jurusan) {
		errs["jurusan"] = "Jurusan harus dipilih"
	}

	return errs
}

type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
	ModeReset
)

type AccountInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Username        string
}

func Account(input AccountInput, mode Mode) Errors {
	errs := Errors{}

	if input.Email == "" {
		errs["email"] = "Email harus diisi"
	} else if !identity.EmailOK(input.Email) {
		errs["email"] = "Format email tidak valid"
	}

	if mode == ModeReset {
		return errs
	}

	// Emptiness ignores surrounding whitespace; the length rule then applies
	// to the password exactly as typed.
	if strings.TrimSpace(input.Password) == "" {
		errs["password"] = "Password harus diisi"
	} else if len([]rune(input.Password)) < 6 {
		errs["password"] = "Password minimal 6 karakter"
	}

	if mode == ModeRegister {
		if input.Username == "" {
			errs["username"] = "Username harus diisi"
		} else if len([]rune(input.Username)) < 3 {
			errs["username"] = "Username minimal 3 karakter"
		}

		if input.ConfirmPassword == "" {
			errs["confirmPassword"] = "Konfirmasi password harus diisi"
		} else if input.ConfirmPassword != input.Password {
			errs["confirmPassword"] = "Password tidak cocok"
		}
	}

	return errs
}
