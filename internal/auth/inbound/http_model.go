package inbound

import (
	"net/http"
	"time"
)

type SendOTPRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyOTPRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Code  string `json:"code"`
}

type VerifyOTPResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`

	cookie *http.Cookie
}

func (r VerifyOTPResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{r.cookie}
}

type ValidateSessionRequest struct {
	Token string `json:"token"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type ValidateSessionResponse struct {
	Valid bool         `json:"valid"`
	User  *SessionUser `json:"user,omitempty"`
	Error string       `json:"error,omitempty"`

	status int
}

func (r ValidateSessionResponse) StatusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

type MeResponse struct {
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type LogoutResponse struct {
	Message string `json:"message"`

	cookie *http.Cookie
}

func (r LogoutResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{r.cookie}
}

type AuditLog struct {
	ID           int64     `json:"id,string"`
	CreatedAt    time.Time `json:"created_at"`
	Action       string    `json:"action"`
	Type         string    `json:"type"`
	Value        string    `json:"value"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

type AuditListResponse struct {
	Logs []AuditLog `json:"logs"`
}
