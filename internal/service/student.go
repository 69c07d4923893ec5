// Package service holds the record service: it validates incoming field
// sets, hashes passwords and hands the result to a storage backend.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/logger"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// ErrInvalidInput is returned when a payload fails validation. The wrapped
// message lists the offending fields.
var ErrInvalidInput = errors.New("invalid input")

// PasswordHasher produces a salted one-way digest of a plaintext password.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// Students is the record service for student records.
type Students struct {
	store    storage.Storage
	hasher   PasswordHasher
	validate *validator.Validate
}

// New returns a Students service backed by store.
func New(store storage.Storage, hasher PasswordHasher) *Students {
	v := validator.New()
	// Report JSON field names ("rollNumber") rather than Go names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}

	return &Students{
		store:    store,
		hasher:   hasher,
		validate: v,
	}
}

// Create validates req, hashes its password and persists a new record.
func (s *Students) Create(ctx context.Context, req types.CreateStudentRequest) (types.Student, error) {
	req.Normalize()
	if err := s.check(req); err != nil {
		return types.Student{}, err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return types.Student{}, fmt.Errorf("create student: %w", err)
	}

	created, err := s.store.CreateStudent(ctx, types.Student{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		RollNumber:  req.RollNumber,
		PhoneNumber: req.PhoneNumber,
		Password:    digest,
	})
	if err != nil {
		return types.Student{}, fmt.Errorf("create student: %w", err)
	}

	logger.FromContext(ctx).Debug().
		Str("id", created.ID).
		Str("roll_number", created.RollNumber).
		Msg("student stored")

	return created, nil
}

// List returns every stored record. An empty store yields an empty slice.
func (s *Students) List(ctx context.Context) ([]types.Student, error) {
	students, err := s.store.GetStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if students == nil {
		students = []types.Student{}
	}
	return students, nil
}

// Get returns the record identified by id.
func (s *Students) Get(ctx context.Context, id string) (types.Student, error) {
	st, err := s.store.GetStudentByID(ctx, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("get student %q: %w", id, err)
	}
	return st, nil
}

// Update merges the supplied fields of req into the record identified by
// id. A supplied password is hashed before it reaches storage.
func (s *Students) Update(ctx context.Context, id string, req types.UpdateStudentRequest) (types.Student, error) {
	req.Normalize()
	if err := s.check(req); err != nil {
		return types.Student{}, err
	}

	patch := types.StudentPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		RollNumber:  req.RollNumber,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Password != nil {
		digest, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return types.Student{}, fmt.Errorf("update student %q: %w", id, err)
		}
		patch.Password = &digest
	}

	if patch.Empty() {
		logger.FromContext(ctx).Debug().Str("id", id).Msg("empty update, refreshing updatedAt only")
	}

	updated, err := s.store.UpdateStudentByID(ctx, id, patch)
	if err != nil {
		return types.Student{}, fmt.Errorf("update student %q: %w", id, err)
	}
	return updated, nil
}

// Delete removes the record identified by id and returns its last content.
func (s *Students) Delete(ctx context.Context, id string) (types.Student, error) {
	deleted, err := s.store.DeleteStudentByID(ctx, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("delete student %q: %w", id, err)
	}
	return deleted, nil
}

// Ping reports whether the storage backend is reachable.
func (s *Students) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Students) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, describe(verrs))
}

// describe turns validator errors into one readable sentence, e.g.
// "field firstName is required, field rollNumber is required".
func describe(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must not be empty", e.Field()))
		case "maxbytes":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s bytes", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}

// maxBytes backs the maxbytes=N tag. Unlike max, it counts bytes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}
