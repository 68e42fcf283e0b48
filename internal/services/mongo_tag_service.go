package services

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jsonblog/backend/internal/models"
)

type mongoTagDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Author       primitive.ObjectID `bson:"author,omitempty"`
	Status       int                `bson:"status"`
	IsDelete     bool               `bson:"isDelete"`
	CreatedTime  time.Time          `bson:"createdTime"`
	ModifiedTime time.Time          `bson:"modifiedTime"`
}

func tagDocToModel(d mongoTagDoc) *models.Tag {
	return &models.Tag{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Author:       hexOrEmpty(d.Author),
		Status:       models.ModerationStatus(d.Status),
		IsDelete:     d.IsDelete,
		CreatedTime:  d.CreatedTime,
		ModifiedTime: d.ModifiedTime,
	}
}

type MongoTagService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoTagService(ctx context.Context, mongoURI, dbName string) (*MongoTagService, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := client.Database(dbName)
	col := db.Collection("tags")

	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "isDelete", Value: 1}}},
		{Keys: bson.D{{Key: "isDelete", Value: 1}, {Key: "status", Value: 1}}},
	})

	log.Printf("[tags] MongoDB connected: db=%s", dbName)
	return &MongoTagService{client: client, db: db, col: col}, nil
}

func (s *MongoTagService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoTagService) FindByID(ctx context.Context, id string) (*models.Tag, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc mongoTagDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tagDocToModel(doc), nil
}

func (s *MongoTagService) FindByIDs(ctx context.Context, ids []string) (map[string]*models.Tag, error) {
	oids := oidList(ids)
	out := make(map[string]*models.Tag, len(oids))
	if len(oids) == 0 {
		return out, nil
	}
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc mongoTagDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		t := tagDocToModel(doc)
		out[t.ID] = t
	}
	return out, cur.Err()
}

// FindByName matches a live (non-deleted) tag by exact name, for
// duplicate checks.
func (s *MongoTagService) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var doc mongoTagDoc
	if err := s.col.FindOne(ctx, bson.M{"name": name, "isDelete": false}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tagDocToModel(doc), nil
}

// Find runs the caller-supplied visibility filter against the collection.
func (s *MongoTagService) Find(ctx context.Context, filter bson.M) ([]models.Tag, error) {
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdTime", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Tag
	for cur.Next(ctx) {
		var doc mongoTagDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *tagDocToModel(doc))
	}
	return out, cur.Err()
}

func (s *MongoTagService) Create(ctx context.Context, t *models.Tag) (string, error) {
	now := time.Now()
	doc := mongoTagDoc{
		Name:         t.Name,
		Status:       int(t.Status),
		CreatedTime:  now,
		ModifiedTime: now,
	}
	if author, err := primitive.ObjectIDFromHex(t.Author); err == nil {
		doc.Author = author
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

// UpdateName renames the tag; a status change rides along only when the
// caller passes a valid status (admin-gated at the handler).
func (s *MongoTagService) UpdateName(ctx context.Context, id string, name string, status *models.ModerationStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	set := bson.M{"name": name, "modifiedTime": time.Now()}
	if status != nil {
		set["status"] = int(*status)
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	return err
}

func (s *MongoTagService) SoftDelete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"isDelete":     true,
		"modifiedTime": time.Now(),
	}})
	return err
}

func (s *MongoTagService) UpdateStatus(ctx context.Context, id string, status models.ModerationStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":       int(status),
		"modifiedTime": time.Now(),
	}})
	return err
}
