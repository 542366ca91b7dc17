package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, app *fiber.App, url string, payload any, headers ...map[string]string) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestCreateCommentAnonymous(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "anon-comment")

	app.Post("/comments", s.CreateComment)

	resp := postJSON(t, app, "/comments", map[string]any{
		"postId":      post.ID,
		"content":     "First!",
		"authorEmail": "visitor@example.com",
		"authorName":  "Visitor",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var created models.Comment
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, models.CommentStatusApproved, created.Status)
	assert.Equal(t, "Visitor", created.Author.Name)

	// A fresh comment carries an empty reply list, not null.
	var asMap map[string]any
	require.NoError(t, json.Unmarshal(raw, &asMap))
	replies, ok := asMap["replies"].([]any)
	require.True(t, ok)
	assert.Empty(t, replies)

	// The identity resolver created a user for the visitor.
	var visitor models.User
	require.NoError(t, db.Where("email = ?", "visitor@example.com").First(&visitor).Error)
	assert.Equal(t, models.RoleUser, visitor.Role)
	assert.Empty(t, visitor.Password)
}

func TestCreateCommentAuthenticated(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "authed-comment")
	user := seedUser(t, db, "member@example.com", models.RoleUser)

	app.Post("/comments", s.CreateComment)

	token, err := s.generateToken(user.ID, user.Name)
	require.NoError(t, err)

	resp := postJSON(t, app, "/comments", map[string]any{
		"postId":  post.ID,
		"content": "Hello from a member",
	}, map[string]string{"Authorization": "Bearer " + token})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, user.ID, created.AuthorID)
}

func TestCreateCommentValidation(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "comment-validation")

	draft := models.Post{
		Title: "WIP", Slug: "comment-validation-draft", Content: "wip",
		Status: models.PostStatusDraft, AuthorID: post.AuthorID,
	}
	require.NoError(t, db.Create(&draft).Error)

	app.Post("/comments", s.CreateComment)

	tests := []struct {
		name           string
		payload        map[string]any
		expectedStatus int
	}{
		{
			name:           "blank content",
			payload:        map[string]any{"postId": post.ID, "content": "   ", "authorEmail": "v@example.com", "authorName": "V"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing post id",
			payload:        map[string]any{"content": "hi", "authorEmail": "v@example.com", "authorName": "V"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown post",
			payload:        map[string]any{"postId": 9999, "content": "hi", "authorEmail": "v@example.com", "authorName": "V"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "draft post",
			payload:        map[string]any{"postId": draft.ID, "content": "hi", "authorEmail": "v@example.com", "authorName": "V"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "anonymous without email",
			payload:        map[string]any{"postId": post.ID, "content": "hi", "authorName": "V"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/comments", tt.payload)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	// None of the rejected requests wrote a row.
	var count int64
	db.Model(&models.Comment{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateCommentNestedReplyRejected(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "nested-reply")
	user := seedUser(t, db, "replier@example.com", models.RoleUser)

	top := models.Comment{Content: "top", AuthorID: user.ID, PostID: post.ID, Status: models.CommentStatusApproved}
	require.NoError(t, db.Create(&top).Error)
	reply := models.Comment{Content: "reply", AuthorID: user.ID, PostID: post.ID, ParentID: &top.ID, Status: models.CommentStatusApproved}
	require.NoError(t, db.Create(&reply).Error)

	app.Post("/comments", s.CreateComment)

	resp := postJSON(t, app, "/comments", map[string]any{
		"postId":      post.ID,
		"parentId":    reply.ID,
		"content":     "reply to a reply",
		"authorEmail": "deep@example.com",
		"authorName":  "Deep",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCommentsThread(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "thread")
	user := seedUser(t, db, "thread@example.com", models.RoleUser)

	first := models.Comment{Content: "first", AuthorID: user.ID, PostID: post.ID, Status: models.CommentStatusApproved}
	require.NoError(t, db.Create(&first).Error)
	second := models.Comment{Content: "second", AuthorID: user.ID, PostID: post.ID, Status: models.CommentStatusApproved}
	require.NoError(t, db.Create(&second).Error)
	pending := models.Comment{Content: "pending", AuthorID: user.ID, PostID: post.ID, Status: models.CommentStatusPending}
	require.NoError(t, db.Create(&pending).Error)
	reply := models.Comment{Content: "a reply", AuthorID: user.ID, PostID: post.ID, ParentID: &first.ID, Status: models.CommentStatusApproved}
	require.NoError(t, db.Create(&reply).Error)

	app.Get("/comments", s.GetComments)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/comments?postId=%d", post.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var thread []models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&thread))

	// Newest top-level comment first; pending comments are hidden; replies
	// ride along under their parent.
	require.Len(t, thread, 2)
	assert.Equal(t, "second", thread[0].Content)
	assert.Equal(t, "first", thread[1].Content)
	require.Len(t, thread[1].Replies, 1)
	assert.Equal(t, "a reply", thread[1].Replies[0].Content)
}

func TestGetCommentsBadQuery(t *testing.T) {
	t.Parallel()
	s, app, _ := setupEngagementServer(t, config.ModerationAutoApprove)
	app.Get("/comments", s.GetComments)

	for _, url := range []string{"/comments", "/comments?postId=abc", "/comments?postId=0"} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, url)
	}
}

func TestDeleteCommentAuthorization(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)
	post := seedPublishedPost(t, db, "delete-auth")
	owner := seedUser(t, db, "owner@example.com", models.RoleUser)
	stranger := seedUser(t, db, "stranger@example.com", models.RoleUser)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)

	app.Delete("/comments/:id", s.AuthRequired(), s.DeleteComment)

	deleteAs := func(t *testing.T, user models.User, commentID uint) *http.Response {
		t.Helper()
		token, err := s.generateToken(user.ID, user.Name)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("stranger forbidden", func(t *testing.T) {
		comment := models.Comment{Content: "mine", AuthorID: owner.ID, PostID: post.ID, Status: models.CommentStatusApproved}
		require.NoError(t, db.Create(&comment).Error)

		resp := deleteAs(t, stranger, comment.ID)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner deletes with replies", func(t *testing.T) {
		comment := models.Comment{Content: "mine", AuthorID: owner.ID, PostID: post.ID, Status: models.CommentStatusApproved}
		require.NoError(t, db.Create(&comment).Error)
		reply := models.Comment{Content: "reply", AuthorID: stranger.ID, PostID: post.ID, ParentID: &comment.ID, Status: models.CommentStatusApproved}
		require.NoError(t, db.Create(&reply).Error)

		resp := deleteAs(t, owner, comment.ID)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var remaining int64
		db.Model(&models.Comment{}).
			Where("id IN ?", []uint{comment.ID, reply.ID}).
			Count(&remaining)
		assert.Zero(t, remaining)
	})

	t.Run("admin deletes any comment", func(t *testing.T) {
		comment := models.Comment{Content: "mine", AuthorID: owner.ID, PostID: post.ID, Status: models.CommentStatusApproved}
		require.NoError(t, db.Create(&comment).Error)

		resp := deleteAs(t, admin, comment.ID)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing comment", func(t *testing.T) {
		resp := deleteAs(t, owner, 99999)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
