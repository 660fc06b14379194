package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/store"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Age          int       `bson:"age"`
	Avatar       []byte    `bson:"avatar,omitempty"`
	Tokens       []string  `bson:"tokens"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func newUserDocument(u *model.User) userDocument {
	tokens := u.Tokens
	if tokens == nil {
		tokens = []string{}
	}
	return userDocument{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Age:          u.Age,
		Avatar:       u.Avatar,
		Tokens:       tokens,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Age:          d.Age,
		Avatar:       d.Avatar,
		Tokens:       d.Tokens,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// UserStore handles user documents in MongoDB.
type UserStore struct {
	col *mongo.Collection
}

// NewUserStore creates a new UserStore on the users collection of db.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(usersCollection)}
}

var _ store.UserStore = (*UserStore)(nil)

// Create inserts a new user document.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	if _, err := s.col.InsertOne(ctx, newUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("mongo insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a user by normalized email address.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

// Update writes the mutable profile fields of a user.
func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	update := bson.M{"$set": bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"password":  user.PasswordHash,
		"age":       user.Age,
		"updatedAt": user.UpdatedAt,
	}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// Delete removes a user document with its tokens and avatar.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// AddToken appends a session token to the user's token array.
func (s *UserStore) AddToken(ctx context.Context, userID, token string) error {
	return s.updateByID(ctx, userID, bson.M{"$push": bson.M{"tokens": token}})
}

// RemoveToken pulls a session token; pulling an absent token changes nothing.
func (s *UserStore) RemoveToken(ctx context.Context, userID, token string) error {
	return s.updateByID(ctx, userID, bson.M{"$pull": bson.M{"tokens": token}})
}

// ClearTokens empties the user's token array.
func (s *UserStore) ClearTokens(ctx context.Context, userID string) error {
	return s.updateByID(ctx, userID, bson.M{"$set": bson.M{"tokens": []string{}}})
}

// SetAvatar replaces the user's avatar, or removes it when avatar is nil.
func (s *UserStore) SetAvatar(ctx context.Context, userID string, avatar []byte) error {
	return s.updateByID(ctx, userID, avatarUpdate(avatar, time.Now().UTC()))
}

// avatarUpdate unsets the field for a nil avatar so cleared users carry no blob.
func avatarUpdate(avatar []byte, now time.Time) bson.M {
	if avatar == nil {
		return bson.M{
			"$unset": bson.M{"avatar": ""},
			"$set":   bson.M{"updatedAt": now},
		}
	}
	return bson.M{"$set": bson.M{"avatar": avatar, "updatedAt": now}}
}

func (s *UserStore) updateByID(ctx context.Context, id string, update bson.M) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}
