package database

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the global connection pool
var DB *pgxpool.Pool

// ConnectDB establishes the database connection pool from DATABASE_URL
func ConnectDB() {
	config, err := pgxpool.ParseConfig(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Error parsing the database URL: %v", err)
	}
	config.MaxConns = 30
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	DB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("Error creating the connection pool: %v", err)
	}

	// Quick liveness probe before the server starts taking traffic
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var version string
	err = DB.QueryRow(ctx, "SELECT version()").Scan(&version)
	if err != nil {
		log.Fatalf("Error testing the connection: %v", err)
	}

	log.Println("Connected to the database:", version)
}

// CloseDB closes the connection pool
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Connection pool closed")
	}
}

// GetDB returns the connection pool instance
func GetDB() *pgxpool.Pool {
	return DB
}
