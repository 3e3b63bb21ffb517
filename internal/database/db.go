package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

func requireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("%s environment variable is required", name)
	}
	return v, nil
}

// Connect opens the application pool from DB_* environment variables
// and pings it before returning.
func Connect() (*pgxpool.Pool, error) {
	var host, port, user, password, dbname string
	for _, v := range []struct {
		name string
		dst  *string
	}{
		{"DB_HOST", &host},
		{"DB_PORT", &port},
		{"DB_USERNAME", &user},
		{"DB_PASSWORD", &password},
		{"DB_DATABASE", &dbname},
	} {
		val, err := requireEnv(v.name)
		if err != nil {
			return nil, err
		}
		*v.dst = val
	}

	userInfo := url.UserPassword(user, password)
	dsn := fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=disable",
		userInfo.String(),
		host,
		port,
		url.PathEscape(dbname),
	)

	log.Printf("Connecting to database: postgres://%s:***@%s:%s/%s", user, host, port, dbname)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string (check your .env file): %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Pool = pool
	log.Println("Database connection pool established successfully")
	return pool, nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
		log.Println("Database connection pool closed")
	}
}
