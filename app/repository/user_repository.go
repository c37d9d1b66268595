package repository

import (
	"context"
	"errors"
	"time"

	"ecolibres-backend/app/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection adalah nama collection dokumen user di MongoDB.
const UsersCollection = "users"

// ErrUserNotFound dikembalikan ketika tidak ada dokumen dengan _id = uid.
var ErrUserNotFound = errors.New("user not found")

// ErrRouteNotFound dikembalikan ketika rute dengan _id tersebut tidak ada di dokumen user.
var ErrRouteNotFound = errors.New("completed route not found")

// ProfileUpdate berisi field profil yang ditulis ulang saat login.
// Semua alias sudah diisi oleh service.
type ProfileUpdate struct {
	Email       string
	DisplayName string
	PhotoURL    string
	LastSeenAt  time.Time
}

// UserRepository mendefinisikan operasi dokumen user (beserta logros & rutasCompletadas).
type UserRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) error

	// SetAchievements menimpa seluruh array logros.
	SetAchievements(ctx context.Context, uid string, achievements []model.Achievement, updatedAt time.Time) error
	// ReplaceAchievements menimpa logros + ultimaConexion dan mengembalikan dokumen terbaru.
	ReplaceAchievements(ctx context.Context, uid string, achievements []model.Achievement, lastSeen time.Time) (*model.User, error)

	// PushRoute menambah 1 rute secara atomik ($push) dan mengembalikan dokumen terbaru.
	PushRoute(ctx context.Context, uid string, route model.CompletedRoute, updatedAt time.Time) (*model.User, error)
	// PullRoute menghapus 1 rute berdasarkan _id secara atomik ($pull).
	PullRoute(ctx context.Context, uid string, routeID primitive.ObjectID) (*model.User, error)

	Ping(ctx context.Context) error
}

type userRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewUserRepository membuat instance baru userRepository berbasis MongoDB.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{db: db, coll: db.Collection(UsersCollection)}
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.EnsureCollections()
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	user.EnsureCollections()
	_, err := r.coll.InsertOne(ctx, user)
	return err
}

// UpdateProfile menulis nilai kanonik sekaligus semua alias lamanya.
func (r *userRepository) UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) error {
	set := bson.M{
		"email":          update.Email,
		"displayName":    update.DisplayName,
		"nombre":         update.DisplayName,
		"photoURL":       update.PhotoURL,
		"profilePhoto":   update.PhotoURL,
		"avatar":         update.PhotoURL,
		"ultimaConexion": update.LastSeenAt,
		"updatedAt":      update.LastSeenAt,
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetAchievements(ctx context.Context, uid string, achievements []model.Achievement, updatedAt time.Time) error {
	if achievements == nil {
		achievements = []model.Achievement{}
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{"logros": achievements, "updatedAt": updatedAt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ReplaceAchievements(ctx context.Context, uid string, achievements []model.Achievement, lastSeen time.Time) (*model.User, error) {
	if achievements == nil {
		achievements = []model.Achievement{}
	}
	update := bson.M{"$set": bson.M{
		"logros":         achievements,
		"ultimaConexion": lastSeen,
		"updatedAt":      lastSeen,
	}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": uid}, update, ErrUserNotFound)
}

func (r *userRepository) PushRoute(ctx context.Context, uid string, route model.CompletedRoute, updatedAt time.Time) (*model.User, error) {
	update := bson.M{
		"$push": bson.M{"rutasCompletadas": route},
		"$set":  bson.M{"updatedAt": updatedAt},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": uid}, update, ErrUserNotFound)
}

func (r *userRepository) PullRoute(ctx context.Context, uid string, routeID primitive.ObjectID) (*model.User, error) {
	// filter ikut mencocokkan rute, supaya dokumen tanpa rute tsb tidak ter-update
	filter := bson.M{"_id": uid, "rutasCompletadas._id": routeID}
	update := bson.M{"$pull": bson.M{"rutasCompletadas": bson.M{"_id": routeID}}}

	user, err := r.findOneAndUpdate(ctx, filter, update, ErrRouteNotFound)
	if !errors.Is(err, ErrRouteNotFound) {
		return user, err
	}

	// bedakan "user tidak ada" dengan "rute tidak ada"
	if _, findErr := r.FindByUID(ctx, uid); findErr != nil {
		return nil, findErr
	}
	return nil, ErrRouteNotFound
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

func (r *userRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, notFound error) (*model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	user.EnsureCollections()
	return &user, nil
}
