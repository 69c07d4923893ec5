package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

func strPtr(v string) *string { return &v }

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func studentDoc(id primitive.ObjectID, roll string, at time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "firstName", Value: "Ada"},
		{Key: "lastName", Value: "Lovelace"},
		{Key: "rollNumber", Value: roll},
		{Key: "phoneNumber", Value: "555-0100"},
		{Key: "password", Value: "$2a$10$digest"},
		{Key: "createdAt", Value: at},
		{Key: "updatedAt", Value: at},
	}
}

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		s.now = func() time.Time { return at }
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := s.CreateStudent(ctx, types.Student{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			RollNumber:  "R100",
			PhoneNumber: "555-0100",
			Password:    "$2a$10$digest",
		})
		require.NoError(mt, err)

		_, err = primitive.ObjectIDFromHex(created.ID)
		assert.NoError(mt, err)
		assert.Equal(mt, at, created.CreatedAt)
		assert.Equal(mt, at, created.UpdatedAt)
		assert.Equal(mt, "R100", created.RollNumber)
	})

	mt.Run("create duplicate roll number", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: studentDB.students index: rollNumber_unique",
		}))

		_, err := s.CreateStudent(ctx, types.Student{RollNumber: "R100"})
		assert.ErrorIs(mt, err, storage.ErrDuplicateRollNumber)
	})

	mt.Run("list", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			studentDoc(first, "R100", at),
			studentDoc(second, "R101", at),
		))

		students, err := s.GetStudents(ctx)
		require.NoError(mt, err)
		require.Len(mt, students, 2)
		assert.Equal(mt, first.Hex(), students[0].ID)
		assert.Equal(mt, "R101", students[1].RollNumber)
	})

	mt.Run("list empty", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		students, err := s.GetStudents(ctx)
		require.NoError(mt, err)
		assert.NotNil(mt, students)
		assert.Empty(mt, students)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, studentDoc(id, "R100", at)))

		got, err := s.GetStudentByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), got.ID)
		assert.Equal(mt, "Ada", got.FirstName)
		assert.Equal(mt, "$2a$10$digest", got.Password)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := s.GetStudentByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, storage.ErrNotFound)
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		s := newStore(mt.Coll)

		_, err := s.GetStudentByID(ctx, "123")
		assert.ErrorIs(mt, err, storage.ErrInvalidID)
		_, err = s.UpdateStudentByID(ctx, "xyz", types.StudentPatch{})
		assert.ErrorIs(mt, err, storage.ErrInvalidID)
		_, err = s.DeleteStudentByID(ctx, "")
		assert.ErrorIs(mt, err, storage.ErrInvalidID)
	})

	mt.Run("update returns post-update document", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		id := primitive.NewObjectID()
		after := studentDoc(id, "R100", at)
		after[4] = bson.E{Key: "phoneNumber", Value: "555-9999"}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: after}))

		updated, err := s.UpdateStudentByID(ctx, id.Hex(), types.StudentPatch{PhoneNumber: strPtr("555-9999")})
		require.NoError(mt, err)
		assert.Equal(mt, "555-9999", updated.PhoneNumber)
		assert.Equal(mt, "Ada", updated.FirstName)
	})

	mt.Run("update duplicate roll number", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Name:    "DuplicateKey",
			Message: "E11000 duplicate key error",
		}))

		_, err := s.UpdateStudentByID(ctx, primitive.NewObjectID().Hex(), types.StudentPatch{RollNumber: strPtr("R200")})
		assert.ErrorIs(mt, err, storage.ErrDuplicateRollNumber)
	})

	mt.Run("delete returns removed document", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: studentDoc(id, "R100", at)}))

		deleted, err := s.DeleteStudentByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), deleted.ID)
		assert.Equal(mt, "R100", deleted.RollNumber)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		s := newStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, s.EnsureIndexes(ctx))
	})
}

func TestSetDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("only supplied fields plus updatedAt", func(t *testing.T) {
		set := setDocument(types.StudentPatch{
			PhoneNumber: strPtr("555-9999"),
			Password:    strPtr("$2a$10$new"),
		}, now)

		assert.Equal(t, bson.D{
			{Key: "phoneNumber", Value: "555-9999"},
			{Key: "password", Value: "$2a$10$new"},
			{Key: "updatedAt", Value: now},
		}, set)
	})

	t.Run("empty patch refreshes updatedAt", func(t *testing.T) {
		set := setDocument(types.StudentPatch{}, now)
		assert.Equal(t, bson.D{{Key: "updatedAt", Value: now}}, set)
	})
}
