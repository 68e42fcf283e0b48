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

type mongoDirectoryDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	ParentID     string             `bson:"pid"`
	IsDelete     bool               `bson:"isDelete"`
	CreatedTime  time.Time          `bson:"createdTime"`
	ModifiedTime time.Time          `bson:"modifiedTime"`
}

func directoryDocToModel(d mongoDirectoryDoc) *models.Directory {
	return &models.Directory{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		ParentID:     d.ParentID,
		IsDelete:     d.IsDelete,
		CreatedTime:  d.CreatedTime,
		ModifiedTime: d.ModifiedTime,
	}
}

type MongoDirectoryService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoDirectoryService(ctx context.Context, mongoURI, dbName string) (*MongoDirectoryService, error) {
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
	col := db.Collection("directories")

	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pid", Value: 1}, {Key: "isDelete", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "isDelete", Value: 1}}},
	})

	log.Printf("[directories] MongoDB connected: db=%s", dbName)
	return &MongoDirectoryService{client: client, db: db, col: col}, nil
}

func (s *MongoDirectoryService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoDirectoryService) FindByID(ctx context.Context, id string) (*models.Directory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc mongoDirectoryDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return directoryDocToModel(doc), nil
}

func (s *MongoDirectoryService) FindByIDs(ctx context.Context, ids []string) (map[string]*models.Directory, error) {
	oids := oidList(ids)
	out := make(map[string]*models.Directory, len(oids))
	if len(oids) == 0 {
		return out, nil
	}
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc mongoDirectoryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		d := directoryDocToModel(doc)
		out[d.ID] = d
	}
	return out, cur.Err()
}

// FindLive matches a non-deleted directory by parent and name, for
// duplicate and parent-existence checks. Pass name "" to match any name.
func (s *MongoDirectoryService) FindLive(ctx context.Context, parentID, name string) (*models.Directory, error) {
	filter := bson.M{"isDelete": false}
	if name != "" {
		filter["name"] = name
	}
	filter["pid"] = parentID
	var doc mongoDirectoryDoc
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return directoryDocToModel(doc), nil
}

// FindLiveByID matches a non-deleted directory by id.
func (s *MongoDirectoryService) FindLiveByID(ctx context.Context, id string) (*models.Directory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc mongoDirectoryDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid, "isDelete": false}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return directoryDocToModel(doc), nil
}

// FindLiveByName matches any non-deleted directory with the name,
// regardless of parent.
func (s *MongoDirectoryService) FindLiveByName(ctx context.Context, name string) (*models.Directory, error) {
	var doc mongoDirectoryDoc
	if err := s.col.FindOne(ctx, bson.M{"name": name, "isDelete": false}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return directoryDocToModel(doc), nil
}

// ListLive returns all non-deleted directories.
func (s *MongoDirectoryService) ListLive(ctx context.Context) ([]models.Directory, error) {
	cur, err := s.col.Find(ctx, bson.M{"isDelete": false}, options.Find().SetSort(bson.D{{Key: "createdTime", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Directory
	for cur.Next(ctx) {
		var doc mongoDirectoryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *directoryDocToModel(doc))
	}
	return out, cur.Err()
}

// ListChildren returns the non-deleted children of a directory.
func (s *MongoDirectoryService) ListChildren(ctx context.Context, parentID string) ([]models.Directory, error) {
	cur, err := s.col.Find(ctx, bson.M{"pid": parentID, "isDelete": false})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Directory
	for cur.Next(ctx) {
		var doc mongoDirectoryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *directoryDocToModel(doc))
	}
	return out, cur.Err()
}

func (s *MongoDirectoryService) Create(ctx context.Context, d *models.Directory) (string, error) {
	now := time.Now()
	doc := mongoDirectoryDoc{
		Name:         d.Name,
		ParentID:     d.ParentID,
		CreatedTime:  now,
		ModifiedTime: now,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

func (s *MongoDirectoryService) UpdateName(ctx context.Context, id string, name string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":         name,
		"modifiedTime": time.Now(),
	}})
	return err
}

// Reparent moves a directory under a new parent.
func (s *MongoDirectoryService) Reparent(ctx context.Context, id string, newParentID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"pid":          newParentID,
		"modifiedTime": time.Now(),
	}})
	return err
}

func (s *MongoDirectoryService) SoftDelete(ctx context.Context, id string) error {
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
