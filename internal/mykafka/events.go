package mykafka

import "github.com/okoval/contacts_api/internal/models"

const (
	EmailTopic   = "email_events"
	ContactTopic = "contact_events"
)

const (
	EmailTypeConfirm = "confirm_email"
	EmailTypeReset   = "reset_password"

	ContactCreated = "contact_created"
	ContactUpdated = "contact_updated"
	ContactDeleted = "contact_deleted"
)

type EmailEvent struct {
	Type     string `json:"type"`
	To       string `json:"to"`
	Username string `json:"username"`
	Link     string `json:"link"`
}

type ContactEvent struct {
	Type    string         `json:"type"`
	Contact models.Contact `json:"contact"`
}
