// Package seed provides database seeding utilities for development and testing.
package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures.yml
var defaultFixtures []byte

// fixtureFile is the on-disk shape of the built-in content fixtures.
type fixtureFile struct {
	Admin struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
	Posts []struct {
		Title   string `yaml:"title"`
		Slug    string `yaml:"slug"`
		Content string `yaml:"content"`
		Status  string `yaml:"status"`
	} `yaml:"posts"`
}

// Fixtures inserts the built-in admin account and starter posts. Existing
// rows are left alone, so it is safe to run on every boot.
func Fixtures(db *gorm.DB) error {
	return FixturesFrom(db, defaultFixtures)
}

// FixturesFrom parses raw YAML fixtures and applies them.
func FixturesFrom(db *gorm.DB, raw []byte) error {
	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse fixtures: %w", err)
	}

	admin, err := ensureAdmin(db, file.Admin.Name, file.Admin.Email, file.Admin.Password)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	for _, p := range file.Posts {
		status := models.PostStatus(strings.ToUpper(p.Status))
		if status != models.PostStatusDraft && status != models.PostStatusPublished {
			status = models.PostStatusPublished
		}
		post := models.Post{
			Title:    p.Title,
			Slug:     p.Slug,
			Content:  p.Content,
			Status:   status,
			AuthorID: admin.ID,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&post).Error; err != nil {
			return fmt.Errorf("create fixture post %q: %w", p.Slug, err)
		}
	}

	return nil
}

func ensureAdmin(db *gorm.DB, name, email, password string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("fixture admin email is required")
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}
