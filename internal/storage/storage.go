// Package storage defines the Storage interface, a contract that any
// database backend must satisfy to work with this application.
//
// Two backends implement it: storage/mongodb (the document store used in
// production) and storage/sqlite (a single-file store for local runs and
// tests). The service layer only sees this interface, so tests can also
// swap in a gomock fake from internal/mock.
package storage

//go:generate mockgen -source=storage.go -destination=../mock/storage_mock.go -package=mock

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Errors every backend maps its native failures onto. Callers compare
// with errors.Is; backends wrap them with extra context.
var (
	// ErrNotFound is returned when no record matches the identifier.
	ErrNotFound = errors.New("no student found")

	// ErrInvalidID is returned when the identifier is not well-formed for
	// the backend (not an ObjectID hex for Mongo, not a UUID for SQLite).
	ErrInvalidID = errors.New("invalid student id")

	// ErrDuplicateRollNumber is returned when a write would make two
	// records share a rollNumber.
	ErrDuplicateRollNumber = errors.New("roll number already exists")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent persists s. The backend assigns ID, CreatedAt and
	// UpdatedAt and returns the stored record.
	CreateStudent(ctx context.Context, s types.Student) (types.Student, error)

	// GetStudents returns every record in store-native order.
	// Returns an empty slice (not nil) if there are none.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// GetStudentByID fetches a single record by its identifier.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// UpdateStudentByID merges the supplied fields of patch into the record,
	// refreshes UpdatedAt and returns the post-update record.
	UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error)

	// DeleteStudentByID removes a record permanently and returns its
	// last-known content.
	DeleteStudentByID(ctx context.Context, id string) (types.Student, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's connections.
	Close(ctx context.Context) error
}
