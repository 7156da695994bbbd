package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orbtao/connectify/backend/pkg/logger"
)

// DB holds the database connections
type DB struct {
	Mongo    *mongo.Client
	Database *mongo.Database
	Postgres *gorm.DB

	log logger.Logger
}

// InitDB opens the document store and the session database. Both handles are
// pooled and owned by the returned DB.
func InitDB(cfg *Config, log logger.Logger) (*DB, error) {
	mongoClient, err := initMongo(cfg.Store.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	log.Info("Successfully connected to MongoDB", "database", cfg.Store.MongoDatabase)

	if err := requireTransactions(mongoClient); err != nil {
		disconnectMongo(mongoClient)
		return nil, err
	}

	postgresDB, err := initPostgres(cfg.Store.PostgresURL, log.WithComponent("gorm"))
	if err != nil {
		disconnectMongo(mongoClient)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info("Successfully connected to PostgreSQL")

	return &DB{
		Mongo:    mongoClient,
		Database: mongoClient.Database(cfg.Store.MongoDatabase),
		Postgres: postgresDB,
		log:      log,
	}, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string, log logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: NewGormLogger(log, gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		disconnectMongo(client)
		return nil, err
	}
	return client, nil
}

// helloReply is the part of the hello command reply that tells a standalone
// server apart from a replica set member or a mongos router.
type helloReply struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

func (h helloReply) supportsTransactions() bool {
	return h.SetName != "" || h.Msg == "isdbgrid"
}

// requireTransactions fails on a standalone server. Follow and unfollow update
// two user documents in one transaction.
func requireTransactions(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var reply helloReply
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&reply); err != nil {
		return fmt.Errorf("failed to query MongoDB topology: %w", err)
	}
	if !reply.supportsTransactions() {
		return fmt.Errorf("MongoDB at MONGO_URI is a standalone server; transactions need a replica set (start mongod with --replSet) or a sharded cluster")
	}
	return nil
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = client.Disconnect(ctx)
}

// CloseDB closes the database connections
func (db *DB) CloseDB(ctx context.Context) {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			db.log.Error("Error getting SQL DB from GORM", "error", err)
		} else if err := sqlDB.Close(); err != nil {
			db.log.Error("Error closing PostgreSQL connection", "error", err)
		} else {
			db.log.Info("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.log.Error("Error closing MongoDB connection", "error", err)
		} else {
			db.log.Info("MongoDB connection closed")
		}
	}
}
