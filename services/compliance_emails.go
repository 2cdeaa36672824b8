package services

import (
	"fmt"
	"time"
)

// BuildExportReadyEmail notifies a user that their data export is available.
// The link is tokenized and expires; the email states the window explicitly.
func BuildExportReadyEmail(toEmail, firstName, downloadURL string, expiresAt time.Time) *Email {
	text := fmt.Sprintf(
		"Hello %s,\n\nYour personal data export is ready.\n\nDownload: %s\n\nThe link expires on %s. After that you can submit a new export request at any time.\n",
		firstName, downloadURL, expiresAt.Format("2006-01-02 15:04 MST"),
	)
	html := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your personal data export is ready.</p><p><a href=%q>Download your data</a></p><p>The link expires on %s. After that you can submit a new export request at any time.</p>",
		firstName, downloadURL, expiresAt.Format("2006-01-02 15:04 MST"),
	)

	return &Email{
		To:       []string{toEmail},
		Subject:  "Your data export is ready",
		HTMLBody: html,
		TextBody: text,
	}
}

// BuildDeletionConfirmationEmail confirms completion of a deletion request.
// Sent to the address captured before the purge; the account no longer
// exists when this goes out.
func BuildDeletionConfirmationEmail(toEmail, requestID string) *Email {
	text := fmt.Sprintf(
		"Your account and personal data have been deleted as requested (request %s).\n\nRecords we are legally required to keep have been anonymized and can no longer be linked to you directly.\n",
		requestID,
	)
	html := fmt.Sprintf(
		"<p>Your account and personal data have been deleted as requested (request %s).</p><p>Records we are legally required to keep have been anonymized and can no longer be linked to you directly.</p>",
		requestID,
	)

	return &Email{
		To:       []string{toEmail},
		Subject:  "Your deletion request is complete",
		HTMLBody: html,
		TextBody: text,
	}
}
