// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, services, and storage backends can all import types without
// depending on each other.
package types

import (
	"strings"
	"time"
)

// Student represents a stored student record.
//
// Password always holds a bcrypt digest once the record has been persisted.
// It is tagged json:"-" so the digest never leaves the process in an HTTP
// response body.
type Student struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	RollNumber  string    `json:"rollNumber"`
	PhoneNumber string    `json:"phoneNumber"`
	Password    string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateStudentRequest is the payload accepted by POST /api/students.
//
// validate:"required" is checked by go-playground/validator after Normalize
// has trimmed the fields, so a value made only of spaces counts as missing.
// maxbytes=72 is bcrypt's input limit, counted in bytes rather than runes.
type CreateStudentRequest struct {
	FirstName   string `json:"firstName"   validate:"required"`
	LastName    string `json:"lastName"    validate:"required"`
	RollNumber  string `json:"rollNumber"  validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password"    validate:"required,maxbytes=72"`
}

// Normalize trims the fields the schema declares as trimmed.
// PhoneNumber and Password are stored exactly as sent.
func (r *CreateStudentRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.RollNumber = strings.TrimSpace(r.RollNumber)
}

// UpdateStudentRequest is the payload accepted by PUT /api/students/{id}.
//
// Every field is a pointer: nil means "not supplied, leave unchanged",
// while a non-nil pointer must carry a non-empty value.
type UpdateStudentRequest struct {
	FirstName   *string `json:"firstName"   validate:"omitempty,min=1"`
	LastName    *string `json:"lastName"    validate:"omitempty,min=1"`
	RollNumber  *string `json:"rollNumber"  validate:"omitempty,min=1"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=1"`
	Password    *string `json:"password"    validate:"omitempty,min=1,maxbytes=72"`
}

// Normalize trims the supplied fields the schema declares as trimmed.
func (r *UpdateStudentRequest) Normalize() {
	for _, f := range []*string{r.FirstName, r.LastName, r.RollNumber} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// StudentPatch is the partial update handed to a storage backend.
// Password, when set, is already hashed.
type StudentPatch struct {
	FirstName   *string
	LastName    *string
	RollNumber  *string
	PhoneNumber *string
	Password    *string
}

// Student returns the patch as a Student whose unsupplied fields are zero
// values. Backends that merge with mergo rely on empty strings being
// skipped.
func (p StudentPatch) Student() Student {
	var s Student
	for dst, src := range map[*string]*string{
		&s.FirstName:   p.FirstName,
		&s.LastName:    p.LastName,
		&s.RollNumber:  p.RollNumber,
		&s.PhoneNumber: p.PhoneNumber,
		&s.Password:    p.Password,
	} {
		if src != nil {
			*dst = *src
		}
	}
	return s
}

// Empty reports whether no field was supplied.
func (p StudentPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.RollNumber == nil &&
		p.PhoneNumber == nil && p.Password == nil
}
