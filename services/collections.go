package services

import (
	"fmt"

	"athena_privacy_go/models"

	"gorm.io/gorm"
)

// OwnedCollection is the contract every owned-data collection exposes to the
// orchestrators. The orchestrators depend only on this interface, so the
// concrete collection set can grow without touching orchestration logic.
type OwnedCollection interface {
	Key() string
	EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error)
	DeleteByOwner(db *gorm.DB, userID string) error
}

// OwnerAnonymizer marks collections that must be anonymized instead of
// deleted when their owner exercises the right to be forgotten.
type OwnerAnonymizer interface {
	AnonymizeByOwner(db *gorm.DB, userID, ref string) error
}

// Registry maps collection keys to their adapters.
var Registry = map[string]OwnedCollection{
	"posts":               postCollection{},
	"comments":            commentCollection{},
	"likes":               likeCollection{},
	"messages":            messageCollection{},
	"follows":             followCollection{},
	"group_members":       groupMemberCollection{},
	"group_posts":         groupPostCollection{},
	"event_registrations": eventRegistrationCollection{},
	"jobs":                jobCollection{},
	"job_applications":    jobApplicationCollection{},
	"saved_jobs":          savedJobCollection{},
	"course_enrollments":  courseEnrollmentCollection{},
	"mentor_sessions":     mentorSessionCollection{},
	"subscriptions":       subscriptionCollection{},
	"sessions":            sessionCollection{},
	"audit_logs":          auditLogCollection{},
	"consents":            consentCollection{},
	"profile":             profileCollection{},
	"user":                userCollection{},
}

// DeletionOrder is the declared purge sequence for the right to be forgotten:
// children before parents, so every foreign-keyed dependent is gone before
// the root user row is removed. The audit_logs step anonymizes instead of
// deleting. This list is the ordering contract the deletion transaction
// walks; changing it changes which deletes can violate referential integrity.
var DeletionOrder = []string{
	"comments",
	"likes",
	"posts",
	"messages",
	"follows",
	"group_members",
	"group_posts",
	"event_registrations",
	"job_applications",
	"saved_jobs",
	"jobs",
	"course_enrollments",
	"mentor_sessions",
	"subscriptions",
	"sessions",
	"audit_logs",
	"consents",
	"profile",
	"user",
}

// ExportPlan lists the collections included in an export bundle, each under
// its registry key. The profile section and social-graph counts are composed
// separately by the export orchestrator.
var ExportPlan = []string{
	"posts",
	"comments",
	"likes",
	"messages",
	"group_members",
	"group_posts",
	"event_registrations",
	"jobs",
	"job_applications",
	"saved_jobs",
	"course_enrollments",
	"mentor_sessions",
	"subscriptions",
	"audit_logs",
	"consents",
}

type postCollection struct{}

func (postCollection) Key() string { return "posts" }

func (postCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.Post
	err := db.Where("author_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (postCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("author_id = ?", userID).Delete(&models.Post{}).Error
}

type commentCollection struct{}

func (commentCollection) Key() string { return "comments" }

func (commentCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.Comment
	err := db.Where("author_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (commentCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("author_id = ?", userID).Delete(&models.Comment{}).Error
}

type likeCollection struct{}

func (likeCollection) Key() string { return "likes" }

func (likeCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.Like
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (likeCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Like{}).Error
}

type messageCollection struct{}

func (messageCollection) Key() string { return "messages" }

// Messages are owned by either side of the conversation
func (messageCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.Message
	err := db.Where("sender_id = ? OR receiver_id = ?", userID, userID).Find(&rows).Error
	return rows, err
}

func (messageCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("sender_id = ? OR receiver_id = ?", userID, userID).Delete(&models.Message{}).Error
}

type followCollection struct{}

func (followCollection) Key() string { return "follows" }

func (followCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.Follow
	err := db.Where("follower_id = ? OR following_id = ?", userID, userID).Find(&rows).Error
	return rows, err
}

func (followCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("follower_id = ? OR following_id = ?", userID, userID).Delete(&models.Follow{}).Error
}

type groupMemberCollection struct{}

func (groupMemberCollection) Key() string { return "group_members" }

func (groupMemberCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.GroupMember
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (groupMemberCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.GroupMember{}).Error
}

type groupPostCollection struct{}

func (groupPostCollection) Key() string { return "group_posts" }

func (groupPostCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.GroupPost
	err := db.Where("author_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (groupPostCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("author_id = ?", userID).Delete(&models.GroupPost{}).Error
}

type eventRegistrationCollection struct{}

func (eventRegistrationCollection) Key() string { return "event_registrations" }

func (eventRegistrationCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.EventRegistration
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (eventRegistrationCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.EventRegistration{}).Error
}

type jobCollection struct{}

func (jobCollection) Key() string { return "jobs" }

func (jobCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.Job
	err := db.Where("posted_by_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (jobCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("posted_by_id = ?", userID).Delete(&models.Job{}).Error
}

type jobApplicationCollection struct{}

func (jobApplicationCollection) Key() string { return "job_applications" }

func (jobApplicationCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.JobApplication
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (jobApplicationCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.JobApplication{}).Error
}

type savedJobCollection struct{}

func (savedJobCollection) Key() string { return "saved_jobs" }

func (savedJobCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.SavedJob
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (savedJobCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.SavedJob{}).Error
}

type courseEnrollmentCollection struct{}

func (courseEnrollmentCollection) Key() string { return "course_enrollments" }

func (courseEnrollmentCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.CourseEnrollment
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (courseEnrollmentCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.CourseEnrollment{}).Error
}

type mentorSessionCollection struct{}

func (mentorSessionCollection) Key() string { return "mentor_sessions" }

func (mentorSessionCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.MentorSession
	err := db.Where("mentee_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (mentorSessionCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("mentee_id = ? OR mentor_id = ?", userID, userID).Delete(&models.MentorSession{}).Error
}

type subscriptionCollection struct{}

func (subscriptionCollection) Key() string { return "subscriptions" }

func (subscriptionCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.Subscription
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (subscriptionCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Subscription{}).Error
}

type sessionCollection struct{}

func (sessionCollection) Key() string { return "sessions" }

func (sessionCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.Session
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (sessionCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

// auditLogCollection covers the privacy audit trail. It must survive its
// subject, so it anonymizes instead of deleting.
type auditLogCollection struct{}

func (auditLogCollection) Key() string { return "audit_logs" }

func (auditLogCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.PrivacyAuditLog
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (auditLogCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return fmt.Errorf("audit log collection must be anonymized, not deleted")
}

// AnonymizeByOwner nulls the actor reference and records the one-way hash.
// UpdateColumns bypasses the immutability hooks; this is the single
// sanctioned mutation of the audit trail.
func (auditLogCollection) AnonymizeByOwner(db *gorm.DB, userID, ref string) error {
	return db.Model(&models.PrivacyAuditLog{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"user_id":        nil,
			"anonymized_ref": ref,
			"details":        encodeJSON(map[string]interface{}{"anonymized": true}),
		}).Error
}

type consentCollection struct{}

func (consentCollection) Key() string { return "consents" }

func (consentCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.ConsentRecord
	err := db.Where("user_id = ?", userID).Order("consent_type ASC").Find(&rows).Error
	return rows, err
}

func (consentCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.ConsentRecord{}).Error
}

type profileCollection struct{}

func (profileCollection) Key() string { return "profile" }

func (profileCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.Profile
	err := db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (profileCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Profile{}).Error
}

// userCollection is the root identity record, deleted last.
type userCollection struct{}

func (userCollection) Key() string { return "user" }

func (userCollection) EnumerateByOwner(db *gorm.DB, userID string) (interface{}, error) {
	var rows []models.User
	err := db.Where("id = ?", userID).Find(&rows).Error
	return rows, err
}

func (userCollection) DeleteByOwner(db *gorm.DB, userID string) error {
	return db.Where("id = ?", userID).Delete(&models.User{}).Error
}
