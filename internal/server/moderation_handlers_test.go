package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRequest(t *testing.T, s *Server, app *fiber.App, admin models.User, method, url string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	token, err := s.generateToken(admin.ID, admin.Name)
	require.NoError(t, err)

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAdminRequired(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	admin := seedUser(t, db, "gate-admin@example.com", models.RoleAdmin)
	member := seedUser(t, db, "gate-member@example.com", models.RoleUser)

	app.Get("/admin/ping", s.AuthRequired(), s.AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	t.Run("admin allowed", func(t *testing.T) {
		resp := adminRequest(t, s, app, admin, http.MethodGet, "/admin/ping", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("member forbidden", func(t *testing.T) {
		resp := adminRequest(t, s, app, member, http.MethodGet, "/admin/ping", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("anonymous unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestModerationVisibilityFlip(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationPreModerate)
	post := seedPublishedPost(t, db, "visibility-flip")
	admin := seedUser(t, db, "flip-admin@example.com", models.RoleAdmin)

	app.Post("/comments", s.CreateComment)
	app.Get("/comments", s.GetComments)
	app.Patch("/admin/comments/:id/status", s.AdminSetCommentStatus)

	// An anonymous comment lands as PENDING under pre-moderation.
	resp := postJSON(t, app, "/comments", map[string]any{
		"postId":      post.ID,
		"content":     "waiting for approval",
		"authorEmail": "patient@example.com",
		"authorName":  "Patient",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()
	assert.Equal(t, models.CommentStatusPending, created.Status)

	threadLen := func(t *testing.T) int {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/comments?postId=%d", post.ID), nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		var thread []models.Comment
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&thread))
		return len(thread)
	}

	// Invisible before approval.
	assert.Equal(t, 0, threadLen(t))

	// Approve and the comment appears.
	approveResp := adminRequest(t, s, app, admin, http.MethodPatch,
		fmt.Sprintf("/admin/comments/%d/status", created.ID),
		map[string]string{"status": "APPROVED"})
	defer func() { _ = approveResp.Body.Close() }()
	assert.Equal(t, http.StatusOK, approveResp.StatusCode)
	assert.Equal(t, 1, threadLen(t))

	// Unapprove and it disappears again.
	unapproveResp := adminRequest(t, s, app, admin, http.MethodPatch,
		fmt.Sprintf("/admin/comments/%d/status", created.ID),
		map[string]string{"status": "PENDING"})
	defer func() { _ = unapproveResp.Body.Close() }()
	assert.Equal(t, http.StatusOK, unapproveResp.StatusCode)
	assert.Equal(t, 0, threadLen(t))
}

func TestAdminCommentsByPreModerationAdmin(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationPreModerate)
	post := seedPublishedPost(t, db, "admin-bypass")
	admin := seedUser(t, db, "bypass-admin@example.com", models.RoleAdmin)

	app.Post("/comments", s.CreateComment)

	token, err := s.generateToken(admin.ID, admin.Name)
	require.NoError(t, err)

	resp := postJSON(t, app, "/comments", map[string]any{
		"postId":  post.ID,
		"content": "admins skip the queue",
	}, map[string]string{"Authorization": "Bearer " + token})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, models.CommentStatusApproved, created.Status)
}

func TestAdminSetCommentStatusErrors(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "status-errors")
	admin := seedUser(t, db, "status-admin@example.com", models.RoleAdmin)
	comment := models.Comment{Content: "c", AuthorID: admin.ID, PostID: post.ID, Status: models.CommentStatusApproved}
	require.NoError(t, db.Create(&comment).Error)

	app.Patch("/admin/comments/:id/status", s.AdminSetCommentStatus)

	t.Run("unknown status", func(t *testing.T) {
		resp := adminRequest(t, s, app, admin, http.MethodPatch,
			fmt.Sprintf("/admin/comments/%d/status", comment.ID),
			map[string]string{"status": "SHADOWBANNED"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		// The row is untouched.
		var current models.Comment
		require.NoError(t, db.First(&current, comment.ID).Error)
		assert.Equal(t, models.CommentStatusApproved, current.Status)
	})

	t.Run("missing comment", func(t *testing.T) {
		resp := adminRequest(t, s, app, admin, http.MethodPatch,
			"/admin/comments/9999/status",
			map[string]string{"status": "APPROVED"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminListComments(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "admin-list")
	admin := seedUser(t, db, "list-admin@example.com", models.RoleAdmin)

	require.NoError(t, db.Create(&models.Comment{Content: "a", AuthorID: admin.ID, PostID: post.ID, Status: models.CommentStatusApproved}).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "p", AuthorID: admin.ID, PostID: post.ID, Status: models.CommentStatusPending}).Error)

	app.Get("/admin/comments", s.AdminListComments)

	t.Run("all statuses", func(t *testing.T) {
		resp := adminRequest(t, s, app, admin, http.MethodGet, "/admin/comments", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Comments []models.Comment `json:"comments"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body.Comments, 2)
	})

	t.Run("pending filter", func(t *testing.T) {
		resp := adminRequest(t, s, app, admin, http.MethodGet, "/admin/comments?status=pending", nil)
		defer func() { _ = resp.Body.Close() }()

		var body struct {
			Comments []models.Comment `json:"comments"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Comments, 1)
		assert.Equal(t, models.CommentStatusPending, body.Comments[0].Status)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		resp := adminRequest(t, s, app, admin, http.MethodGet, "/admin/comments?status=SPAM", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminDeleteComment(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "admin-delete")
	admin := seedUser(t, db, "delete-admin@example.com", models.RoleAdmin)
	member := seedUser(t, db, "delete-member@example.com", models.RoleUser)

	comment := models.Comment{Content: "spam", AuthorID: member.ID, PostID: post.ID, Status: models.CommentStatusApproved}
	require.NoError(t, db.Create(&comment).Error)
	reply := models.Comment{Content: "reply", AuthorID: member.ID, PostID: post.ID, ParentID: &comment.ID, Status: models.CommentStatusApproved}
	require.NoError(t, db.Create(&reply).Error)

	app.Delete("/admin/comments/:id", s.AdminDeleteComment)

	resp := adminRequest(t, s, app, admin, http.MethodDelete,
		fmt.Sprintf("/admin/comments/%d", comment.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var remaining int64
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&remaining)
	assert.Zero(t, remaining)
}

func TestAdminAnalytics(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "analytics")
	admin := seedUser(t, db, "analytics-admin@example.com", models.RoleAdmin)

	require.NoError(t, db.Create(&models.Comment{Content: "a", AuthorID: admin.ID, PostID: post.ID, Status: models.CommentStatusApproved}).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "p", AuthorID: admin.ID, PostID: post.ID, Status: models.CommentStatusPending}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: admin.ID, PostID: post.ID}).Error)

	app.Get("/admin/analytics", s.AdminAnalytics)

	resp := adminRequest(t, s, app, admin, http.MethodGet, "/admin/analytics?period=7", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats service.EngagementStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, int64(2), stats.TotalComments)
	assert.Equal(t, int64(1), stats.ApprovedComments)
	assert.Equal(t, int64(1), stats.PendingComments)
	assert.Equal(t, int64(1), stats.TotalLikes)
	assert.Equal(t, 7, stats.PeriodDays)
	require.Len(t, stats.TopPosts, 1)
	assert.Equal(t, post.ID, stats.TopPosts[0].PostID)
}
