package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/store"
)

type taskDocument struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"owner"`
	Description string    `bson:"description"`
	Completed   bool      `bson:"completed"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (d taskDocument) toModel() model.Task {
	return model.Task{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

var sortFields = map[string]string{
	model.SortCreatedAt:   "createdAt",
	model.SortUpdatedAt:   "updatedAt",
	model.SortDescription: "description",
	model.SortCompleted:   "completed",
}

// TaskStore handles task documents in MongoDB.
type TaskStore struct {
	col *mongo.Collection
}

// NewTaskStore creates a new TaskStore on the tasks collection of db.
func NewTaskStore(db *mongo.Database) *TaskStore {
	return &TaskStore{col: db.Collection(tasksCollection)}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create inserts a new task document.
func (s *TaskStore) Create(ctx context.Context, task *model.Task) error {
	doc := taskDocument{
		ID:          task.ID,
		OwnerID:     task.OwnerID,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo insert task: %w", err)
	}
	return nil
}

// List returns the owner's tasks filtered, sorted and paged by q.
func (s *TaskStore) List(ctx context.Context, ownerID string, q model.TaskQuery) ([]model.Task, error) {
	cur, err := s.col.Find(ctx, listFilter(ownerID, q), listOptions(q))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, len(docs))
	for i, d := range docs {
		tasks[i] = d.toModel()
	}
	return tasks, nil
}

// listFilter puts the owner condition first; completed is optional.
func listFilter(ownerID string, q model.TaskQuery) bson.D {
	filter := bson.D{{Key: "owner", Value: ownerID}}
	if q.Completed != nil {
		filter = append(filter, bson.E{Key: "completed", Value: *q.Completed})
	}
	return filter
}

func listOptions(q model.TaskQuery) *options.FindOptions {
	field, ok := sortFields[q.SortBy]
	if !ok {
		field = "createdAt"
	}
	dir := 1
	if q.SortDesc {
		dir = -1
	}

	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}})
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return opts
}

// GetByID retrieves one of the owner's tasks.
func (s *TaskStore) GetByID(ctx context.Context, ownerID, id string) (*model.Task, error) {
	var doc taskDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": id, "owner": ownerID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}
	t := doc.toModel()
	return &t, nil
}

// Update writes description, completed and updatedAt of an owned task.
func (s *TaskStore) Update(ctx context.Context, task *model.Task) error {
	update := bson.M{"$set": bson.M{
		"description": task.Description,
		"completed":   task.Completed,
		"updatedAt":   task.UpdatedAt,
	}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": task.ID, "owner": task.OwnerID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Delete removes an owned task and returns it.
func (s *TaskStore) Delete(ctx context.Context, ownerID, id string) (*model.Task, error) {
	var doc taskDocument
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id, "owner": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}
	t := doc.toModel()
	return &t, nil
}

// DeleteByOwner removes every task of the owner.
func (s *TaskStore) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"owner": ownerID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
