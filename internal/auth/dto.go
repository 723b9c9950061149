package auth

import (
	"github.com/mehmetcc/ppdb/internal/person"
	"github.com/mehmetcc/ppdb/internal/session"
)

type registerApplicantRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Gender   string `json:"gender"   validate:"required,oneof=L P"`
	NISN     string `json:"nisn"     validate:"required,len=10,numeric"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type registerApplicantResponse struct {
	PublicID string `json:"public_id"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type user struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
	Gender string `json:"gender,omitempty"`
}

func userFromPerson(p *person.Person) user {
	return user{
		ID:     string(p.PublicID),
		Email:  p.Email,
		Role:   string(p.Role),
		Name:   p.Name,
		Gender: string(p.Gender),
	}
}

func userFromIdentity(id *session.Identity) user {
	return user{
		ID:     id.ID,
		Email:  id.Email,
		Role:   string(id.Role),
		Name:   id.Name,
		Gender: id.Gender,
	}
}

type loginResponse struct {
	Message string `json:"message"`
	User    user   `json:"user"`
}

type verifiedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type verifyResponse struct {
	User verifiedUser `json:"user"`
}

type meResponse struct {
	Success bool `json:"success"`
	User    user `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
