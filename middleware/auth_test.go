package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"athena_privacy_go/db"
	"athena_privacy_go/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&models.User{}))
	db.DB = testDB
	return testDB
}

func invoke(mw echo.MiddlewareFunc, headerValue string, priorUser *models.User) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if headerValue != "" {
		req.Header.Set(UserIDHeader, headerValue)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if priorUser != nil {
		c.Set("user", priorUser)
	}

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return c, handler(c)
}

func TestRequireUserRejectsMissingHeader(t *testing.T) {
	setupAuthTest(t)

	_, err := invoke(RequireUser(), "", nil)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireUserRejectsUnknownUser(t *testing.T) {
	setupAuthTest(t)

	_, err := invoke(RequireUser(), uuid.New().String(), nil)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireUserLoadsUserIntoContext(t *testing.T) {
	testDB := setupAuthTest(t)

	user := models.User{Email: "mw@example.com", FirstName: "M", LastName: "W", PasswordHash: "x"}
	require.NoError(t, testDB.Create(&user).Error)

	c, err := invoke(RequireUser(), user.ID, nil)
	require.NoError(t, err)

	loaded, ok := c.Get("user").(*models.User)
	require.True(t, ok)
	assert.Equal(t, user.ID, loaded.ID)
}

func TestRequireAdmin(t *testing.T) {
	setupAuthTest(t)

	member := &models.User{ID: uuid.New().String(), Role: "member"}
	admin := &models.User{ID: uuid.New().String(), Role: "admin"}

	_, err := invoke(RequireAdmin(), "", member)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.Code)

	_, err = invoke(RequireAdmin(), "", admin)
	assert.NoError(t, err)

	// Without a resolved user the request never reaches the role check
	_, err = invoke(RequireAdmin(), "", nil)
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
