package transport

import (
	"time"

	"github.com/okoval/contacts_api/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email,min=7,max=100"`
	Password string `json:"password" validate:"required,min=4,max=128"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RequestEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=128"`
}

type ContactRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Surname  string `json:"surname"  validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email,min=7,max=100"`
	Phone    string `json:"phone"    validate:"required,min=7,max=20"`
	Birthday string `json:"birthday" validate:"required"`
	Info     string `json:"info"     validate:"omitempty,max=500"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ContactResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  string    `json:"birthday"`
	Info      string    `json:"info,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const BirthdayLayout = "2006-01-02"

func NewContactResponse(contact models.Contact) ContactResponse {
	return ContactResponse{
		ID:        contact.ID,
		Name:      contact.Name,
		Surname:   contact.Surname,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Birthday:  contact.Birthday.Format(BirthdayLayout),
		Info:      contact.Info,
		CreatedAt: contact.CreatedAt,
		UpdatedAt: contact.UpdatedAt,
	}
}

func NewContactResponses(contacts []models.Contact) []ContactResponse {
	out := make([]ContactResponse, len(contacts))
	for i, contact := range contacts {
		out[i] = NewContactResponse(contact)
	}
	return out
}
