package main

import (
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/chirp-sns/api-go/config"
	"github.com/chirp-sns/api-go/models"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

// Seeds the database directly with fake users, posts, likes and
// follows. Duplicate likes/follows from the random generator collapse
// against the unique pair indexes, the same way the API handlers do.
func main() {
	users := flag.Int("users", 25, "number of users to create")
	postsPerUser := flag.Int("posts", 8, "posts per user")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	gofakeit.Seed(time.Now().UnixNano())

	db := config.InitDB()

	var created []models.User
	for i := 0; i < *users; i++ {
		user := models.User{
			ExternalID:      uuid.New().String(),
			Username:        gofakeit.Username(),
			DisplayName:     gofakeit.Name(),
			Email:           gofakeit.Email(),
			Bio:             gofakeit.Sentence(8),
			ProfileImageURL: gofakeit.ImageURL(200, 200),
			Provider:        "webhook",
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("skipping user %s: %v", user.Username, err)
			continue
		}
		created = append(created, user)
	}
	log.Printf("created %d users", len(created))

	if len(created) == 0 {
		log.Fatal("no users created, aborting")
	}

	var posts []models.Post
	for _, user := range created {
		for i := 0; i < *postsPerUser; i++ {
			post := models.Post{
				Content:     gofakeit.SentenceSimple(),
				UserID:      user.ID,
				IsPublished: true,
			}
			if err := db.Create(&post).Error; err != nil {
				log.Printf("skipping post: %v", err)
				continue
			}
			posts = append(posts, post)
		}
	}
	log.Printf("created %d posts", len(posts))

	likes := 0
	for range make([]struct{}, len(posts)*3) {
		user := created[gofakeit.Number(0, len(created)-1)]
		post := posts[gofakeit.Number(0, len(posts)-1)]
		res := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{UserID: user.ID, PostID: post.ID})
		if res.Error == nil && res.RowsAffected > 0 {
			likes++
		}
	}
	log.Printf("created %d likes", likes)

	follows := 0
	for range make([]struct{}, len(created)*5) {
		follower := created[gofakeit.Number(0, len(created)-1)]
		following := created[gofakeit.Number(0, len(created)-1)]
		if follower.ID == following.ID {
			continue
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID})
		if res.Error == nil && res.RowsAffected > 0 {
			follows++
		}
	}
	log.Printf("created %d follows", follows)
}
