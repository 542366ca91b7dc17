package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsletterSubscribe(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)

	app.Post("/newsletter", s.Subscribe)

	t.Run("success", func(t *testing.T) {
		resp := postJSON(t, app, "/newsletter", map[string]string{"email": "  Reader@Example.COM "})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var sub models.Subscriber
		require.NoError(t, db.Where("email = ?", "reader@example.com").First(&sub).Error)
	})

	t.Run("duplicate", func(t *testing.T) {
		resp := postJSON(t, app, "/newsletter", map[string]string{"email": "reader@example.com"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid email", func(t *testing.T) {
		resp := postJSON(t, app, "/newsletter", map[string]string{"email": "not-an-email"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestNewsletterUnsubscribe(t *testing.T) {
	t.Parallel()
	s, app, db := setupEngagementServer(t, config.ModerationAutoApprove)

	app.Delete("/newsletter", s.Unsubscribe)

	require.NoError(t, db.Create(&models.Subscriber{Email: "leaver@example.com"}).Error)

	deleteJSON := func(t *testing.T, payload map[string]string) *http.Response {
		t.Helper()
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodDelete, "/newsletter", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		resp := deleteJSON(t, map[string]string{"email": "leaver@example.com"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var count int64
		db.Model(&models.Subscriber{}).Where("email = ?", "leaver@example.com").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("not subscribed", func(t *testing.T) {
		resp := deleteJSON(t, map[string]string{"email": "leaver@example.com"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
