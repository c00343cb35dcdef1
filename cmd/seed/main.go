package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/user-directory-api/config"
)

type seedUser struct {
	email     string
	firstName string
	lastName  string
	status    string
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := []seedUser{
		{email: "alice@example.com", firstName: "Alice", lastName: "Anderson", status: "active"},
		{email: "bob@example.com", firstName: "Bob", lastName: "Brown", status: "active"},
		{email: "carol@example.com", firstName: "Carol", lastName: "Clark", status: "inactive"},
	}

	for _, u := range users {
		var id int64
		err := db.QueryRow(`
			INSERT INTO users (email, password_hash, first_name, last_name, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, u.email, "seeded-hash", u.firstName, u.lastName, u.status).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		fmt.Printf("seeded user: id=%d email=%s\n", id, u.email)
	}
}
