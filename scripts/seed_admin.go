// Seed an administrator account.
//
// Admin accounts cannot be created through the public registration endpoint,
// so the first one has to be inserted out of band.
//
// Usage: go run scripts/seed_admin.go -email admin@example.com -password <secret>
package main

import (
	"flag"
	"log"
	"os"

	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/pkg/database"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "Administrator", "display name")
	flag.Parse()

	if *password == "" {
		log.Fatal("a password is required")
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("failed to parse config file: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	var existing model.User
	if err := db.Where("email = ?", *email).First(&existing).Error; err == nil {
		log.Fatalf("user %s already exists (id %d)", *email, existing.ID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	user := model.User{
		Name:     *name,
		Email:    *email,
		Password: string(hash),
		Role:     model.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	log.Printf("admin %s created (id %d)", *email, user.ID)
}
