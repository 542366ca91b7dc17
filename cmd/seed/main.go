// Command main runs the database seeder for Inkwell.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 25, "Number of posts to create")
	numSubscribers := flag.Int("subscribers", 30, "Number of newsletter subscribers to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixturesOnly := flag.Bool("fixtures-only", false, "Only apply built-in fixtures, no fake data")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *fixturesOnly {
		if err := seed.Fixtures(database.DB); err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
		log.Println("✓ Fixtures applied")
		return
	}

	s := seed.NewSeeder(database.DB)
	if err := s.Seed(seed.Options{
		NumUsers:       *numUsers,
		NumPosts:       *numPosts,
		NumSubscribers: *numSubscribers,
		ShouldClean:    *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
