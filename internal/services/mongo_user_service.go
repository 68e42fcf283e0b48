package services

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jsonblog/backend/internal/models"
)

var ErrNotFound = errors.New("record not found")

type mongoUserDoc struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty"`
	Username     string                 `bson:"username"`
	Password     string                 `bson:"password"`
	Biography    string                 `bson:"biography"`
	Picture      string                 `bson:"picture"`
	Role         int                    `bson:"role"`
	Status       int                    `bson:"status"`
	Expiration   time.Time              `bson:"expiration,omitempty"`
	IsDelete     bool                   `bson:"isDelete"`
	CreatedTime  time.Time              `bson:"createdTime"`
	ModifiedTime time.Time              `bson:"modifiedTime"`
	Pending      *models.PendingProfile `bson:"unReview,omitempty"`
}

func userDocToModel(d mongoUserDoc) *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Password:     d.Password,
		Biography:    d.Biography,
		Picture:      d.Picture,
		Role:         models.Role(d.Role),
		Status:       models.ModerationStatus(d.Status),
		Expiration:   d.Expiration,
		IsDelete:     d.IsDelete,
		CreatedTime:  d.CreatedTime,
		ModifiedTime: d.ModifiedTime,
		Pending:      d.Pending,
	}
}

type MongoUserService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoUserService(ctx context.Context, mongoURI, dbName string) (*MongoUserService, error) {
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
	col := db.Collection("users")

	// Best-effort indexes. Usernames are looked up across both the base
	// field and the pending overlay at login and uniqueness checks.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}},
		{Keys: bson.D{{Key: "unReview.username", Value: 1}}},
	})

	log.Printf("[users] MongoDB connected: db=%s", dbName)
	return &MongoUserService{client: client, db: db, col: col}, nil
}

func (s *MongoUserService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoUserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc mongoUserDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return userDocToModel(doc), nil
}

func (s *MongoUserService) FindByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	out := make(map[string]*models.User, len(oids))
	if len(oids) == 0 {
		return out, nil
	}
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc mongoUserDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		u := userDocToModel(doc)
		out[u.ID] = u
	}
	return out, cur.Err()
}

// FindByName matches the base username or a pending overlay username, so a
// name someone is waiting to have approved cannot be claimed in the
// meantime.
func (s *MongoUserService) FindByName(ctx context.Context, username string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"unReview.username": username},
	}}
	var doc mongoUserDoc
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return userDocToModel(doc), nil
}

func (s *MongoUserService) Create(ctx context.Context, u *models.User) (string, error) {
	now := time.Now()
	doc := mongoUserDoc{
		Username:     u.Username,
		Password:     u.Password,
		Biography:    u.Biography,
		Picture:      u.Picture,
		Role:         int(u.Role),
		Status:       int(u.Status),
		Expiration:   u.Expiration,
		IsDelete:     false,
		CreatedTime:  now,
		ModifiedTime: u.ModifiedTime,
		Pending:      u.Pending,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

// UpdateRole persists a role change. Writing the same role twice is a
// harmless no-op, which is what makes the lazy expiry race benign.
func (s *MongoUserService) UpdateRole(ctx context.Context, id string, role models.Role) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": int(role)}})
	return err
}

func (s *MongoUserService) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"password": passwordHash}})
	return err
}

// AttachPendingProfile replaces the pending overlay and stamps the edit
// time the cooldown is measured from. The base fields stay untouched until
// an admin merges the overlay.
func (s *MongoUserService) AttachPendingProfile(ctx context.Context, id string, pending *models.PendingProfile, modified time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"unReview":     pending,
		"modifiedTime": modified,
	}})
	return err
}

// ApprovePendingProfile merges the overlay into the base fields, clears it
// and marks the profile approved. No-op when no overlay is pending.
func (s *MongoUserService) ApprovePendingProfile(ctx context.Context, id string) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Pending == nil {
		return nil
	}
	oid, _ := primitive.ObjectIDFromHex(id)
	set := bson.M{"status": int(models.StatusApproved)}
	if user.Pending.Username != "" {
		set["username"] = user.Pending.Username
	}
	if user.Pending.Biography != "" {
		set["biography"] = user.Pending.Biography
	}
	if user.Pending.Picture != "" {
		set["picture"] = user.Pending.Picture
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set":   set,
		"$unset": bson.M{"unReview": ""},
	})
	return err
}

// RejectPendingProfile discards the overlay, leaving base fields as the
// public truth.
func (s *MongoUserService) RejectPendingProfile(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$unset": bson.M{"unReview": ""}})
	return err
}
