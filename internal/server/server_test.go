package server

import (
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupEngagementServer builds a Server backed by an in-memory SQLite
// database with real repositories and services. Redis, the hub, and the
// notifier stay nil; publishing degrades to a no-op.
func setupEngagementServer(t *testing.T, moderationMode string) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:      "test_secret",
		ModerationMode: moderationMode,
	}

	s := &Server{
		config:         cfg,
		db:             db,
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		likeRepo:       repository.NewLikeRepository(db),
		subscriberRepo: repository.NewSubscriberRepository(db),
	}
	s.identityService = service.NewIdentityService(s.userRepo)
	s.commentService = service.NewCommentService(
		s.commentRepo, s.postRepo, s.identityService,
		cfg.PreModerationEnabled, s.isAdminByUserID)
	s.likeService = service.NewLikeService(s.likeRepo, s.postRepo, s.identityService)
	s.moderationService = service.NewModerationService(s.commentRepo, db)

	app := fiber.New()
	return s, app, db
}

func seedPublishedPost(t *testing.T, db *gorm.DB, slug string) models.Post {
	t.Helper()

	author := models.User{Name: "Author", Email: slug + "-author@example.com", Role: models.RoleAdmin}
	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}
	post := models.Post{
		Title:    "Post " + slug,
		Slug:     slug,
		Content:  "body",
		Status:   models.PostStatusPublished,
		AuthorID: author.ID,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) models.User {
	t.Helper()

	user := models.User{Name: "Reader", Email: email, Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
