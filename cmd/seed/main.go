// Command seed populates the database with demo data.
package main

import (
	"flag"
	"log"

	"stash/internal/config"
	"stash/internal/database"
	"stash/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of random users to create")
	categories := flag.Int("categories", 3, "Categories per user")
	products := flag.Int("products", 5, "Products per category")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixtures := flag.Bool("fixtures", true, "Create curated fixture profiles")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *fixtures {
		if err := s.ApplyFixtures(); err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	}

	if _, err := s.SeedDemo(*numUsers, *categories, *products); err != nil {
		log.Fatalf("Demo seeding failed: %v", err)
	}

	log.Println("All done! Test users have the password: password123")
}
