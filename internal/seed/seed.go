package seed

import (
	"log"
	"math/rand"

	"mosaic/internal/models"

	"gorm.io/gorm"
)

// Seeder orchestrates demo-data generation.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll truncates every seeded table, children first.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.CommentLike{},
		&models.Comment{},
		&models.Like{},
		&models.SavedPost{},
		&models.PostImage{},
		&models.Post{},
		&models.Follow{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	log.Println("Cleared all seeded tables")
	return nil
}

// SeedSocialMesh creates users, a follow graph, posts and engagement spread
// across them. Returns the created users.
func (s *Seeder) SeedSocialMesh(numUsers, numPosts int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	// Each user follows a handful of others.
	for _, u := range users {
		for n := 0; n < 3+rand.Intn(8); n++ {
			if err := s.factory.Follow(u, users[rand.Intn(len(users))]); err != nil {
				return nil, err
			}
		}
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[rand.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	log.Printf("Created %d posts", len(posts))

	// Engagement: likes, saves and comments from random users.
	for _, p := range posts {
		for n := 0; n < rand.Intn(10); n++ {
			if err := s.factory.LikePost(users[rand.Intn(len(users))], p); err != nil {
				return nil, err
			}
		}
		for n := 0; n < rand.Intn(3); n++ {
			if err := s.factory.SavePost(users[rand.Intn(len(users))], p); err != nil {
				return nil, err
			}
		}
		for n := 0; n < rand.Intn(5); n++ {
			if _, err := s.factory.CreateComment(users[rand.Intn(len(users))], p); err != nil {
				return nil, err
			}
		}
	}
	log.Println("Seeded engagement mesh")

	return users, nil
}
