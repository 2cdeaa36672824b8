package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"athena_privacy_go/config"
	"athena_privacy_go/db"
	"athena_privacy_go/models"
	"athena_privacy_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while allowing shared cache
	// for the export fan-out
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, testDB.AutoMigrate(models.AllModels()...))

	// Set globals the handlers reach for
	db.DB = testDB
	services.SetPseudonymSalt("test-pseudonym-salt-0123456789")
	services.Blob = services.NewLocalBlobStore(t.TempDir())

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
	})

	return e, c, rec
}

func seedUser(t *testing.T, testDB *gorm.DB, email, role string) *models.User {
	user := models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	require.NoError(t, user.SetPassword("a test password"))
	require.NoError(t, testDB.Create(&user).Error)
	return &user
}
