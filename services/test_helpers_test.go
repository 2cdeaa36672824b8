package services

import (
	"reflect"
	"testing"
	"time"

	"athena_privacy_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique shared memory name isolates tests while letting concurrent
	// export reads share the database
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, testDB.AutoMigrate(models.AllModels()...))

	SetPseudonymSalt("test-pseudonym-salt-0123456789")
	Blob = NewLocalBlobStore(t.TempDir())

	return testDB
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		City:      "London",
		Country:   "UK",
		Bio:       "First programmer",
		Headline:  "Analyst",
	}
	require.NoError(t, user.SetPassword("correct horse battery staple"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedOwnedData populates every owned collection with at least one row for
// the user, plus counterpart rows so OR-clause adapters are exercised from
// both sides.
func seedOwnedData(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()

	other := seedUser(t, db, "other-"+uuid.New().String()+"@example.com")

	post := models.Post{AuthorID: userID, Body: "hello world"}
	require.NoError(t, db.Create(&post).Error)
	require.NoError(t, db.Create(&models.Comment{AuthorID: userID, PostID: post.ID, Body: "a comment"}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: userID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Message{SenderID: userID, ReceiverID: other.ID, Body: "sent"}).Error)
	require.NoError(t, db.Create(&models.Message{SenderID: other.ID, ReceiverID: userID, Body: "received"}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: userID, FollowingID: other.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: other.ID, FollowingID: userID}).Error)
	require.NoError(t, db.Create(&models.GroupMember{UserID: userID, GroupID: uuid.New().String(), GroupName: "Gophers"}).Error)
	require.NoError(t, db.Create(&models.GroupPost{AuthorID: userID, GroupID: uuid.New().String(), Body: "group post"}).Error)
	require.NoError(t, db.Create(&models.EventRegistration{UserID: userID, EventID: uuid.New().String(), EventName: "Meetup"}).Error)

	job := models.Job{PostedByID: userID, Title: "Engineer"}
	require.NoError(t, db.Create(&job).Error)
	otherJob := models.Job{PostedByID: other.ID, Title: "Analyst"}
	require.NoError(t, db.Create(&otherJob).Error)
	require.NoError(t, db.Create(&models.JobApplication{UserID: userID, JobID: otherJob.ID}).Error)
	require.NoError(t, db.Create(&models.SavedJob{UserID: userID, JobID: otherJob.ID}).Error)

	require.NoError(t, db.Create(&models.CourseEnrollment{UserID: userID, CourseID: uuid.New().String(), CourseName: "Go 101"}).Error)
	require.NoError(t, db.Create(&models.MentorSession{MenteeID: userID, MentorID: other.ID, ScheduledAt: time.Now()}).Error)
	require.NoError(t, db.Create(&models.Subscription{UserID: userID, PlanName: "pro"}).Error)
	require.NoError(t, db.Create(&models.Session{UserID: userID, Token: uuid.New().String(), ExpiresAt: time.Now().Add(time.Hour)}).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: userID, DisplayName: "ada"}).Error)

	_, err := RecordConsent(db, userID, models.ConsentTypeMarketingEmail, true, CaptureContext{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
}

// countOwnedRows sums rows across every registered collection for the user
func countOwnedRows(t *testing.T, db *gorm.DB, userID string) int {
	t.Helper()

	total := 0
	for key, adapter := range Registry {
		rows, err := adapter.EnumerateByOwner(db, userID)
		require.NoError(t, err, "enumerate %s", key)
		total += reflect.ValueOf(rows).Len()
	}
	return total
}

// swapAdapter replaces a registry entry for the duration of a test
func swapAdapter(t *testing.T, key string, adapter OwnedCollection) {
	t.Helper()

	original, ok := Registry[key]
	require.True(t, ok, "unknown adapter %q", key)
	Registry[key] = adapter
	t.Cleanup(func() { Registry[key] = original })
}

// countingCollection wraps an adapter and counts delete invocations
type countingCollection struct {
	inner   OwnedCollection
	deletes *int
}

func (c countingCollection) Key() string { return c.inner.Key() }

func (c countingCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	return c.inner.EnumerateByOwner(db, userID)
}

func (c countingCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	*c.deletes++
	return c.inner.DeleteByOwner(db, userID)
}

// failingCollection fails every mutation to simulate a mid-transaction fault
type failingCollection struct {
	inner OwnedCollection
	err   error
}

func (f failingCollection) Key() string { return f.inner.Key() }

func (f failingCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	return f.inner.EnumerateByOwner(db, userID)
}

func (f failingCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return f.err
}
