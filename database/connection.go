package database

import (
	"context"
	"fmt"
	"time"

	"ecolibres-backend/app/model"
	"ecolibres-backend/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database menampung koneksi aktif. Postgres nil jika inbox kontak tidak dikonfigurasi.
type Database struct {
	Mongo    *mongo.Database
	Postgres *gorm.DB
}

// InitDB membuka koneksi MongoDB (wajib) dan PostgreSQL (opsional).
func InitDB(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Database, error) {
	mongoDB, err := connectMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDBName))

	db := &Database{Mongo: mongoDB}
	if !cfg.Postgres.Enabled() {
		log.Warn("DB_HOST not set, contact inbox disabled")
		return db, nil
	}

	pgDB, err := connectPostgres(cfg)
	if err != nil {
		_ = mongoDB.Client().Disconnect(context.Background())
		return nil, err
	}
	log.Info("connected to PostgreSQL", zap.String("database", cfg.Postgres.Name))

	db.Postgres = pgDB
	return db, nil
}

func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("gagal koneksi ke mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("gagal ping mongo: %w", err)
	}

	return client.Database(cfg.MongoDBName), nil
}

func connectPostgres(cfg *config.Config) (*gorm.DB, error) {
	pgDB, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gagal koneksi ke postgres: %w", err)
	}

	if err := pgDB.AutoMigrate(&model.ContactMessage{}); err != nil {
		return nil, fmt.Errorf("gagal migrasi database: %w", err)
	}
	return pgDB, nil
}

// Close memutus koneksi MongoDB dan menutup pool SQL.
func (d *Database) Close(ctx context.Context) error {
	var firstErr error
	if d.Postgres != nil {
		if sqlDB, err := d.Postgres.DB(); err == nil {
			firstErr = sqlDB.Close()
		}
	}
	if d.Mongo != nil {
		if err := d.Mongo.Client().Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
