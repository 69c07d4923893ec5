// Package mongodb implements storage.Storage on a MongoDB collection.
//
// Records live in the "students" collection. Identifiers are ObjectIDs,
// exposed as their hex form. A unique index on rollNumber enforces the
// uniqueness constraint in the store itself.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

const (
	collectionName  = "students"
	rollNumberIndex = "rollNumber_unique"

	defaultConnectTimeout = 10 * time.Second
)

// Options configures the connection.
type Options struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

// Store is the MongoDB implementation of storage.Storage.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

var _ storage.Storage = (*Store)(nil)

// document is the stored shape of a student.
type document struct {
	ID          primitive.ObjectID `bson:"_id"`
	FirstName   string             `bson:"firstName"`
	LastName    string             `bson:"lastName"`
	RollNumber  string             `bson:"rollNumber"`
	PhoneNumber string             `bson:"phoneNumber"`
	Password    string             `bson:"password"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// New connects to MongoDB, verifies the connection and makes sure the
// rollNumber index exists.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongodb.New: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb.New: ping: %w", err)
	}

	s := newStore(client.Database(opts.Database).Collection(collectionName))
	s.client = client

	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return s, nil
}

func newStore(coll *mongo.Collection) *Store {
	return &Store{
		client: coll.Database().Client(),
		coll:   coll,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique rollNumber index. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "rollNumber", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(rollNumberIndex),
	})
	if err != nil {
		return fmt.Errorf("mongodb.EnsureIndexes: %w", err)
	}
	return nil
}

// CreateStudent inserts a new document with a fresh ObjectID.
func (s *Store) CreateStudent(ctx context.Context, st types.Student) (types.Student, error) {
	now := s.now()
	doc := document{
		ID:          primitive.NewObjectID(),
		FirstName:   st.FirstName,
		LastName:    st.LastName,
		RollNumber:  st.RollNumber,
		PhoneNumber: st.PhoneNumber,
		Password:    st.Password,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", mapError(err))
	}

	return doc.toStudent(), nil
}

// GetStudents returns every document in natural order.
func (s *Store) GetStudents(ctx context.Context) ([]types.Student, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("GetStudents: find: %w", err)
	}

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("GetStudents: decode: %w", err)
	}

	students := make([]types.Student, 0, len(docs))
	for _, d := range docs {
		students = append(students, d.toStudent())
	}
	return students, nil
}

// GetStudentByID fetches one document by _id.
func (s *Store) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := parseID(id)
	if err != nil {
		return types.Student{}, err
	}

	var doc document
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", mapNoDocuments(err, id))
	}
	return doc.toStudent(), nil
}

// UpdateStudentByID applies the supplied fields with $set and returns the
// document as it is after the update.
func (s *Store) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	oid, err := parseID(id)
	if err != nil {
		return types.Student{}, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc document
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": setDocument(patch, s.now())}, opts).Decode(&doc)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", mapNoDocuments(mapError(err), id))
	}
	return doc.toStudent(), nil
}

// DeleteStudentByID removes one document and returns its content.
func (s *Store) DeleteStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := parseID(id)
	if err != nil {
		return types.Student{}, err
	}

	var doc document
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: %w", mapNoDocuments(err, id))
	}
	return doc.toStudent(), nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// setDocument builds the $set body for patch. updatedAt is always set.
func setDocument(patch types.StudentPatch, now time.Time) bson.D {
	set := bson.D{}
	for _, f := range []struct {
		key   string
		value *string
	}{
		{"firstName", patch.FirstName},
		{"lastName", patch.LastName},
		{"rollNumber", patch.RollNumber},
		{"phoneNumber", patch.PhoneNumber},
		{"password", patch.Password},
	} {
		if f.value != nil {
			set = append(set, bson.E{Key: f.key, Value: *f.value})
		}
	}
	return append(set, bson.E{Key: "updatedAt", Value: now})
}

func (d document) toStudent() types.Student {
	return types.Student{
		ID:          d.ID.Hex(),
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		RollNumber:  d.RollNumber,
		PhoneNumber: d.PhoneNumber,
		Password:    d.Password,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", storage.ErrInvalidID, id)
	}
	return oid, nil
}

func mapNoDocuments(err error, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w with id: %s", storage.ErrNotFound, id)
	}
	return err
}

func mapError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateRollNumber, err.Error())
	}
	return err
}
