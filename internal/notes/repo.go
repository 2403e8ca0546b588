package notes

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("note not found")
	ErrForbidden = errors.New("not the owner of this note")
)

// Repository persists notes. The service layer depends only on this
// interface; MongoRepo and MemoryRepo both implement it.
type Repository interface {
	Insert(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error)
	ListByOwner(ctx context.Context, userID primitive.ObjectID) ([]*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, userID primitive.ObjectID, query, category string) ([]*Note, error)
	DistinctCategories(ctx context.Context, userID primitive.ObjectID) ([]string, error)
	CountByType(ctx context.Context, userID primitive.ObjectID) (TypeCounts, error)
}

type MongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection("notes")}
}

// EnsureIndexes creates the indexes backing per-owner listing and filtering.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "category", Value: 1},
			},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create note indexes: %w", err)
	}
	return nil
}

func (r *MongoRepo) Insert(ctx context.Context, n *Note) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	n.UpdatedAt = n.CreatedAt

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *MongoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error) {
	var note Note
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id.Hex(), err)
	}
	return &note, nil
}

func (r *MongoRepo) ListByOwner(ctx context.Context, userID primitive.ObjectID) ([]*Note, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer cursor.Close(ctx)

	var notes []*Note
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

func (r *MongoRepo) Update(ctx context.Context, n *Note) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": n.ID}, n)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Search matches query case-insensitively as a substring of title, content,
// transcription, or tags. category, when set, is an exact-match filter.
func (r *MongoRepo) Search(ctx context.Context, userID primitive.ObjectID, query, category string) ([]*Note, error) {
	filter := bson.M{"user_id": userID}

	if query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"transcription": pattern},
			bson.M{"tags": pattern},
		}
	}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer cursor.Close(ctx)

	var notes []*Note
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return notes, nil
}

func (r *MongoRepo) DistinctCategories(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "category", bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}
	return categories, nil
}

// CountByType aggregates the per-type note counts shown on the dashboard.
func (r *MongoRepo) CountByType(ctx context.Context, userID primitive.ObjectID) (TypeCounts, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"user_id": userID}},
		{
			"$group": bson.M{
				"_id":   "$note_type",
				"count": bson.M{"$sum": 1},
			},
		},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return TypeCounts{}, fmt.Errorf("aggregate type counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Type  NoteType `bson:"_id"`
		Count int64    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return TypeCounts{}, fmt.Errorf("decode type counts: %w", err)
	}

	var counts TypeCounts
	for _, row := range rows {
		switch row.Type {
		case TypeText:
			counts.Text = row.Count
		case TypeFile:
			counts.File = row.Count
		case TypeAudio:
			counts.Audio = row.Count
		}
	}
	return counts, nil
}
