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

type mongoArticleDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Author       primitive.ObjectID   `bson:"author"`
	Title        string               `bson:"title"`
	Content      string               `bson:"content"`
	Description  string               `bson:"description"`
	Picture      string               `bson:"picture"`
	DirectoryID  primitive.ObjectID   `bson:"directoryId,omitempty"`
	Tags         []primitive.ObjectID `bson:"tags,omitempty"`
	Like         []primitive.ObjectID `bson:"like,omitempty"`
	Dislike      []primitive.ObjectID `bson:"dislike,omitempty"`
	ReadCount    int                  `bson:"readCount"`
	IsPublic     bool                 `bson:"isPublic"`
	Status       int                  `bson:"status"`
	IsDelete     bool                 `bson:"isDelete"`
	CreatedTime  time.Time            `bson:"createdTime"`
	ModifiedTime time.Time            `bson:"modifiedTime"`
}

func articleDocToModel(d mongoArticleDoc) *models.Article {
	return &models.Article{
		ID:           d.ID.Hex(),
		Author:       d.Author.Hex(),
		Title:        d.Title,
		Content:      d.Content,
		Description:  d.Description,
		Picture:      d.Picture,
		DirectoryID:  hexOrEmpty(d.DirectoryID),
		Tags:         hexList(d.Tags),
		Like:         hexList(d.Like),
		Dislike:      hexList(d.Dislike),
		ReadCount:    d.ReadCount,
		IsPublic:     d.IsPublic,
		Status:       models.ModerationStatus(d.Status),
		IsDelete:     d.IsDelete,
		CreatedTime:  d.CreatedTime,
		ModifiedTime: d.ModifiedTime,
	}
}

func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

func hexList(oids []primitive.ObjectID) []string {
	out := make([]string, 0, len(oids))
	for _, oid := range oids {
		out = append(out, oid.Hex())
	}
	return out
}

func oidList(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

type MongoArticleService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoArticleService(ctx context.Context, mongoURI, dbName string) (*MongoArticleService, error) {
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
	col := db.Collection("articles")

	// Best-effort indexes covering the listing filter.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isDelete", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "createdTime", Value: -1}}},
	})

	log.Printf("[articles] MongoDB connected: db=%s", dbName)
	return &MongoArticleService{client: client, db: db, col: col}, nil
}

func (s *MongoArticleService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoArticleService) FindByID(ctx context.Context, id string) (*models.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc mongoArticleDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid, "isDelete": false}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return articleDocToModel(doc), nil
}

// Find runs the caller-supplied filter (built by VisibilityFilter) against
// the collection with pagination; the store never re-filters in memory.
func (s *MongoArticleService) Find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Article, error) {
	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdTime", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Article
	for cur.Next(ctx) {
		var doc mongoArticleDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *articleDocToModel(doc))
	}
	return out, cur.Err()
}

func (s *MongoArticleService) Create(ctx context.Context, a *models.Article) (string, error) {
	author, err := primitive.ObjectIDFromHex(a.Author)
	if err != nil {
		return "", ErrNotFound
	}
	now := time.Now()
	doc := mongoArticleDoc{
		Author:       author,
		Title:        a.Title,
		Content:      a.Content,
		Description:  a.Description,
		Picture:      a.Picture,
		Tags:         oidList(a.Tags),
		IsPublic:     a.IsPublic,
		Status:       int(a.Status),
		CreatedTime:  now,
		ModifiedTime: now,
	}
	if dir, err := primitive.ObjectIDFromHex(a.DirectoryID); err == nil {
		doc.DirectoryID = dir
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

func (s *MongoArticleService) Update(ctx context.Context, id string, in *models.ArticleInput) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	set := bson.M{
		"title":        in.Title,
		"content":      in.Content,
		"description":  in.Description,
		"picture":      in.Picture,
		"tags":         oidList(in.Tags),
		"modifiedTime": time.Now(),
	}
	if dir, err := primitive.ObjectIDFromHex(in.DirectoryID); err == nil {
		set["directoryId"] = dir
	}
	if in.IsPublic != nil {
		set["isPublic"] = *in.IsPublic
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	return err
}

// SoftDelete flags the article; nothing is ever physically removed.
func (s *MongoArticleService) SoftDelete(ctx context.Context, id string) error {
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

func (s *MongoArticleService) UpdateStatus(ctx context.Context, id string, status models.ModerationStatus) error {
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
