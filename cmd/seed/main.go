package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/nivobank/backoffice/internal/seeds"
)

var (
	dbHost     = getEnv("DB_HOST", "localhost")
	dbPort     = getEnv("DB_PORT", "5432")
	dbUser     = getEnv("DB_USER", "postgres")
	dbPassword = getEnv("DB_PASSWORD", "postgres")
	dbName     = getEnv("DB_NAME", "backoffice")
	dbSSLMode  = getEnv("DB_SSL_MODE", "disable")
)

func main() {
	var (
		seedUsers  = flag.Bool("users", false, "Seed the bootstrap super-admin user")
		verifyOnly = flag.Bool("verify", false, "Only verify existing seed data, don't seed")
	)
	flag.Parse()

	log.SetFlags(log.LstdFlags)
	log.SetPrefix("[Seed] ")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	log.Println("Connecting to database...")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✓ Database connection established")

	rbacSeeder := seeds.NewRBACSeeder(db)
	statusSeeder := seeds.NewStatusSeeder(db)

	if *verifyOnly {
		log.Println("\n=== Verification Mode ===")
		if err := statusSeeder.Verify(ctx); err != nil {
			log.Fatalf("Status catalog verification failed: %v", err)
		}
		if err := rbacSeeder.Verify(ctx); err != nil {
			log.Fatalf("RBAC verification failed: %v", err)
		}
		log.Println("\n✓ All seed data verified successfully!")
		return
	}

	log.Println("\n=== Seeding Mode ===")

	// Status catalog first: the lifecycle refuses to start without it.
	if err := statusSeeder.SeedAll(ctx); err != nil {
		log.Fatalf("Status catalog seeding failed: %v", err)
	}

	if err := rbacSeeder.SeedAll(ctx, *seedUsers); err != nil {
		log.Fatalf("RBAC seeding failed: %v", err)
	}

	fmt.Println()
	log.Println("Running post-seed verification...")
	if err := statusSeeder.Verify(ctx); err != nil {
		log.Fatalf("Post-seed verification failed: %v", err)
	}
	if err := rbacSeeder.Verify(ctx); err != nil {
		log.Fatalf("Post-seed verification failed: %v", err)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	log.Println("✓✓✓ Seeding completed successfully! ✓✓✓")
	fmt.Println(strings.Repeat("=", 60))

	if *seedUsers {
		fmt.Println("\n⚠️  DEFAULT ADMIN CREDENTIALS:")
		fmt.Println("   Username: admin")
		fmt.Println("   Email:    admin@example.com")
		fmt.Println("   Password: admin123")
		fmt.Println("\n⚠️  IMPORTANT: Change the default password after first login!")
		fmt.Println(strings.Repeat("=", 60))
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
