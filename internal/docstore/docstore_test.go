package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/taskly/taskly-go/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestListFilter(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "owner", Value: "u1"}}, listFilter("u1", model.TaskQuery{}))
	assert.Equal(t,
		bson.D{{Key: "owner", Value: "u1"}, {Key: "completed", Value: false}},
		listFilter("u1", model.TaskQuery{Completed: boolPtr(false)}),
	)
}

func TestListOptions(t *testing.T) {
	tests := []struct {
		name      string
		query     model.TaskQuery
		wantSort  bson.D
		wantLimit *int64
		wantSkip  *int64
	}{
		{
			name:     "default order",
			query:    model.TaskQuery{},
			wantSort: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			name:     "unknown field falls back",
			query:    model.TaskQuery{SortBy: "owner"},
			wantSort: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			name:      "descending with paging",
			query:     model.TaskQuery{SortBy: model.SortDescription, SortDesc: true, Limit: 2, Skip: 4},
			wantSort:  bson.D{{Key: "description", Value: -1}, {Key: "_id", Value: -1}},
			wantLimit: int64Ptr(2),
			wantSkip:  int64Ptr(4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := listOptions(tt.query)
			assert.Equal(t, tt.wantSort, opts.Sort)
			assert.Equal(t, tt.wantLimit, opts.Limit)
			assert.Equal(t, tt.wantSkip, opts.Skip)
		})
	}
}

func int64Ptr(n int64) *int64 { return &n }

func TestAvatarUpdate(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	set := avatarUpdate([]byte{1, 2}, now)
	assert.Equal(t, bson.M{"$set": bson.M{"avatar": []byte{1, 2}, "updatedAt": now}}, set)

	cleared := avatarUpdate(nil, now)
	assert.Contains(t, cleared, "$unset")
	assert.Equal(t, bson.M{"updatedAt": now}, cleared["$set"])
}

func TestUserDocumentRoundTrip(t *testing.T) {
	u := &model.User{ID: "u1", Name: "Ali", Email: "ali@example.com", Age: 30}

	doc := newUserDocument(u)
	assert.NotNil(t, doc.Tokens, "tokens must encode as an empty array")

	back := doc.toModel()
	assert.Equal(t, u.Email, back.Email)
	assert.Equal(t, u.Age, back.Age)
}
