package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Owner       primitive.ObjectID `bson:"owner"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDocument) toModel() model.Task {
	return model.Task{
		ID:          d.ID.Hex(),
		OwnerID:     d.Owner.Hex(),
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoTaskRepository stores tasks in their own collection with an owner
// reference. ObjectIDs are generated in-process and increase monotonically,
// so _id doubles as the insertion-order tie-breaker.
type MongoTaskRepository struct {
	coll *mongo.Collection
}

// NewMongoTaskRepository creates a MongoTaskRepository on db's tasks collection.
func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection(tasksCollection)}
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *model.Task) error {
	owner, err := primitive.ObjectIDFromHex(task.OwnerID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", task.OwnerID, err)
	}

	ts := now()
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Owner:       owner,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	task.ID = doc.ID.Hex()
	task.CreatedAt = ts
	task.UpdatedAt = ts
	return nil
}

func (r *MongoTaskRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Task, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, ErrTaskNotFound
	}

	var doc taskDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("finding task: %w", err)
	}

	task := doc.toModel()
	return &task, nil
}

func (r *MongoTaskRepository) List(ctx context.Context, ownerID string, q model.TaskQuery) ([]model.Task, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []model.Task{}, nil
	}

	filter := bson.M{"owner": owner}
	if q.Completed != nil {
		filter["completed"] = *q.Completed
	}

	cursor, err := r.coll.Find(ctx, filter, listOptions(q))
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []model.Task{}
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding task: %w", err)
		}
		tasks = append(tasks, doc.toModel())
	}

	return tasks, cursor.Err()
}

// listOptions translates q into sort/skip/limit. The sort field names match
// the stored document keys.
func listOptions(q model.TaskQuery) *options.FindOptions {
	sort := bson.D{}
	if q.SortField.Valid() {
		dir := 1
		if q.SortDesc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: string(q.SortField), Value: dir})
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	opts := options.Find().SetSort(sort)
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}

func (r *MongoTaskRepository) Update(ctx context.Context, task *model.Task) error {
	filter, ok := ownedFilter(task.OwnerID, task.ID)
	if !ok {
		return ErrTaskNotFound
	}

	ts := now()
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"description": task.Description,
		"completed":   task.Completed,
		"updatedAt":   ts,
	}})
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrTaskNotFound
	}

	task.UpdatedAt = ts
	return nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, ownerID, id string) (*model.Task, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, ErrTaskNotFound
	}

	var doc taskDocument
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("deleting task: %w", err)
	}

	task := doc.toModel()
	return &task, nil
}

func (r *MongoTaskRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return 0, nil
	}

	result, err := r.coll.DeleteMany(ctx, bson.M{"owner": owner})
	if err != nil {
		return 0, fmt.Errorf("deleting tasks: %w", err)
	}
	return result.DeletedCount, nil
}

// ownedFilter matches a task by id and owner. Malformed ids cannot match any
// task, so ok is false for them.
func ownedFilter(ownerID, id string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "owner": owner}, true
}
