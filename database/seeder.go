package database

import (
	"context"
	"fmt"

	"ecolibres-backend/app/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UserIndexes adalah index collection users. Aman dijalankan berulang,
// MongoDB mengabaikan index yang sudah ada dengan spesifikasi sama.
func UserIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_1")},
		{Keys: bson.D{{Key: "logros.id", Value: 1}}, Options: options.Index().SetName("logros_id_1")},
		{Keys: bson.D{{Key: "logros.completado", Value: 1}}, Options: options.Index().SetName("logros_completado_1")},
		{Keys: bson.D{{Key: "rutasCompletadas.fecha", Value: -1}}, Options: options.Index().SetName("rutasCompletadas_fecha_-1")},
	}
}

// EnsureIndexes membuat index MongoDB saat startup. Panggil sekali setelah InitDB.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	names, err := db.Collection(repository.UsersCollection).Indexes().CreateMany(ctx, UserIndexes())
	if err != nil {
		return fmt.Errorf("gagal membuat index users: %w", err)
	}
	log.Info("mongo indexes ready", zap.Strings("indexes", names))
	return nil
}
