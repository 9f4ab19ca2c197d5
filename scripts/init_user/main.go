package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/foodlog/internal/config"
	"github.com/foodlog/internal/db"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	username := flag.String("username", cfg.SuperRootUserName, "admin username")
	password := flag.String("password", cfg.SuperRootPassword, "admin password")
	flag.Parse()

	dsn := cfg.DatabasePath
	if cfg.DatabaseDriver == db.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	if err := db.Init(cfg.DatabaseDriver, dsn); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	var count int64
	if err := db.DB.Model(&db.User{}).Count(&count).Error; err != nil {
		log.Fatalf("failed to count users: %v", err)
	}
	if count > 0 {
		fmt.Println("admin user already exists, nothing to do")
		return
	}

	if *username == "" {
		*username = "admin"
	}
	if *password == "" {
		*password = "admin123"
	}
	if err := db.EnsureUser(db.DB, *username, *password); err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	fmt.Println("admin user created")
	fmt.Println("username:", *username)
}
