// Command main fills the configured database with demo data.
package main

import (
	"flag"
	"log"

	"dojo/internal/config"
	"dojo/internal/database"
	"dojo/internal/middleware"
	"dojo/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	comments := flag.Int("comments", 3, "Top-level comments per post")
	replies := flag.Int("replies", 1, "Replies per top-level comment")
	likes := flag.Int("likes", 5, "Likes per post")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a named preset (minimal, demo, populated)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		log.Println("Existing data cleared")
	}

	var sum seed.Summary
	if *preset != "" {
		log.Printf("Applying preset: %s (ignoring size flags)", *preset)
		sum, err = s.ApplyPreset(*preset)
	} else {
		log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)
		sum, err = s.Run(seed.Options{
			NumUsers:          *numUsers,
			NumPosts:          *numPosts,
			CommentsPerPost:   *comments,
			RepliesPerComment: *replies,
			LikesPerPost:      *likes,
			Seed:              *randSeed,
		})
	}
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d profiles, %d posts, %d comments, %d replies, %d likes",
		sum.Users, sum.Profiles, sum.Posts, sum.Comments, sum.Replies, sum.Likes)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
