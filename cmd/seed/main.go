package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"blogpress/config"
	"blogpress/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	adminEmail := "admin@blogpress.local"
	adminPassword := "password123"
	hash, err := helpers.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, is_admin)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, adminEmail, hash, "Admin").Scan(&adminID)
	if err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", adminID, adminEmail, adminPassword)

	// Sample published post owned by the admin so the public feed is not
	// empty on a fresh install.
	var postID string
	err = db.QueryRow(`
		INSERT INTO posts (title, body, published, author_id)
		VALUES ($1, $2, true, $3)
		RETURNING id
	`, "Welcome to blogpress", "This is a sample post. Comments are open.", adminID).Scan(&postID)
	if err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	fmt.Printf("seeded post: id=%s\n", postID)
}
