package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumPosts       int
	NumSubscribers int
	ShouldClean    bool
}

// Seeder builds fake engagement data and persists it to the database.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all engagement rows. Likes and comments go first so
// foreign keys stay satisfied.
func (s *Seeder) ClearAll() error {
	for _, stmt := range []string{
		"DELETE FROM likes",
		"DELETE FROM comments",
		"DELETE FROM subscribers",
		"DELETE FROM posts",
		"DELETE FROM users",
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}
	log.Println("✓ Existing data cleared")
	return nil
}

// Seed populates the database with fake readers, posts, comment threads,
// likes, and newsletter subscribers.
func (s *Seeder) Seed(opts Options) error {
	log.Printf("🌱 Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	if err := Fixtures(s.db); err != nil {
		return fmt.Errorf("apply fixtures: %w", err)
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	posts, err := s.createPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	commentCount, err := s.createCommentThreads(users, posts)
	if err != nil {
		return fmt.Errorf("create comments: %w", err)
	}
	log.Printf("✓ %d comments created", commentCount)

	likeCount, err := s.createLikes(users, posts)
	if err != nil {
		return fmt.Errorf("create likes: %w", err)
	}
	log.Printf("✓ %d likes created", likeCount)

	subCount, err := s.createSubscribers(opts.NumSubscribers)
	if err != nil {
		return fmt.Errorf("create subscribers: %w", err)
	}
	log.Printf("✓ %d subscribers created", subCount)

	log.Println("🌱 Seeding complete")
	return nil
}

func (s *Seeder) createUsers(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		user := models.User{
			Name:  name,
			Email: fmt.Sprintf("%s.%d@%s", slugify(name), i, gofakeit.DomainName()),
			Role:  models.RoleUser,
			// Seeded readers look like identity-resolver users: no password.
			CreatedAt: s.pastTime(120),
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := s.db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Seeder) createPosts(users []models.User, count int) ([]models.Post, error) {
	var admin models.User
	if err := s.db.Where("role = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		return nil, fmt.Errorf("no admin to author posts: %w", err)
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		title := strings.TrimSuffix(gofakeit.HipsterSentence(4), ".")
		status := models.PostStatusPublished
		// Roughly one in six stays a draft.
		if s.rng.Intn(6) == 0 {
			status = models.PostStatusDraft
		}
		posts = append(posts, models.Post{
			Title:     title,
			Slug:      fmt.Sprintf("%s-%d", slugify(title), i),
			Content:   gofakeit.Paragraph(3, 5, 12, "\n\n"),
			Status:    status,
			AuthorID:  admin.ID,
			CreatedAt: s.pastTime(90),
		})
	}
	if len(posts) == 0 {
		return posts, nil
	}
	if err := s.db.Create(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Seeder) createCommentThreads(users []models.User, posts []models.Post) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	total := 0
	for _, post := range posts {
		if post.Status != models.PostStatusPublished {
			continue
		}
		topLevel := s.rng.Intn(6)
		for i := 0; i < topLevel; i++ {
			author := users[s.rng.Intn(len(users))]
			comment := models.Comment{
				Content:   gofakeit.HipsterSentence(8 + s.rng.Intn(12)),
				AuthorID:  author.ID,
				PostID:    post.ID,
				Status:    s.randomStatus(),
				CreatedAt: s.pastTime(60),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return total, err
			}
			total++

			// Approved comments sometimes collect replies. Replies never
			// nest further than one level.
			if comment.Status != models.CommentStatusApproved {
				continue
			}
			replies := s.rng.Intn(3)
			for j := 0; j < replies; j++ {
				replier := users[s.rng.Intn(len(users))]
				reply := models.Comment{
					Content:   gofakeit.HipsterSentence(5 + s.rng.Intn(8)),
					AuthorID:  replier.ID,
					PostID:    post.ID,
					ParentID:  &comment.ID,
					Status:    s.randomStatus(),
					CreatedAt: comment.CreatedAt.Add(time.Duration(1+s.rng.Intn(72)) * time.Hour),
				}
				if err := s.db.Create(&reply).Error; err != nil {
					return total, err
				}
				total++
			}
		}
	}
	return total, nil
}

func (s *Seeder) createLikes(users []models.User, posts []models.Post) (int, error) {
	total := 0
	for _, post := range posts {
		if post.Status != models.PostStatusPublished {
			continue
		}
		// Each published post gets likes from a random prefix of shuffled users.
		shuffled := make([]models.User, len(users))
		copy(shuffled, users)
		s.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		likers := s.rng.Intn(len(shuffled) + 1)
		for _, user := range shuffled[:likers] {
			like := models.Like{
				UserID:    user.ID,
				PostID:    post.ID,
				CreatedAt: s.pastTime(60),
			}
			if err := s.db.Create(&like).Error; err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

func (s *Seeder) createSubscribers(count int) (int, error) {
	subs := make([]models.Subscriber, 0, count)
	for i := 0; i < count; i++ {
		subs = append(subs, models.Subscriber{
			Email:     fmt.Sprintf("sub.%d@%s", i, gofakeit.DomainName()),
			CreatedAt: s.pastTime(180),
		})
	}
	if len(subs) == 0 {
		return 0, nil
	}
	if err := s.db.Create(&subs).Error; err != nil {
		return 0, err
	}
	return len(subs), nil
}

func (s *Seeder) randomStatus() models.CommentStatus {
	// Most seeded comments are live; a few sit in the moderation queue.
	if s.rng.Intn(5) == 0 {
		return models.CommentStatusPending
	}
	return models.CommentStatusApproved
}

func (s *Seeder) pastTime(maxDays int) time.Time {
	days := s.rng.Intn(maxDays)
	hours := s.rng.Intn(24)
	mins := s.rng.Intn(60)
	return time.Now().Add(-time.Duration(days)*24*time.Hour -
		time.Duration(hours)*time.Hour - time.Duration(mins)*time.Minute)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_' || r == '.':
			return '-'
		default:
			return -1
		}
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}
