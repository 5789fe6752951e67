package inbound

import (
	"errors"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/clearshot/internal/auth/entity"
	"github.com/shandysiswandi/clearshot/internal/auth/usecase"
	"github.com/shandysiswandi/clearshot/internal/pkg/goerror"
	"github.com/shandysiswandi/clearshot/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the one-time code login.
type HTTPEndpoint struct {
	uc     uc
	cookie CookieConfig
}

// SendOTP issues and delivers a one-time code.
// @Summary Send one-time code
// @Description Generates a 6-digit code, stores it for 5 minutes and delivers it by email or SMS.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "Recipient"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} router.errorResponse "Validation or delivery error"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/otp/send [post]
func (h *HTTPEndpoint) SendOTP(r *router.Request) (any, error) {
	var req SendOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.SendOTP(r.Context(), usecase.SendOTPInput{
		Type:      entity.ChannelType(req.Type),
		Value:     req.Value,
		ClientIP:  r.ClientIP(),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return MessageResponse{Message: "OTP sent successfully"}, nil
}

// VerifyOTP consumes a one-time code and starts a session.
// @Summary Verify one-time code
// @Description Checks the code, marks it used and returns a session token, also set as an HTTP-only cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Code"
// @Success 200 {object} VerifyOTPResponse
// @Failure 400 {object} router.errorResponse "Invalid or expired code"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/otp/verify [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Type:      entity.ChannelType(req.Type),
		Value:     req.Value,
		Code:      req.Code,
		ClientIP:  r.ClientIP(),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{
		Message: "OTP verified successfully",
		Token:   resp.Token,
		cookie:  h.sessionCookie(resp.Token, resp.TTL),
	}, nil
}

// ValidateSession reports whether a session token is still good.
// @Summary Validate session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ValidateSessionRequest true "Token"
// @Success 200 {object} ValidateSessionResponse
// @Failure 400 {object} ValidateSessionResponse "Token is required"
// @Failure 401 {object} ValidateSessionResponse "Invalid or expired token"
// @Failure 500 {object} ValidateSessionResponse "Server configuration error"
// @Router /api/v1/auth/session/validate [post]
func (h *HTTPEndpoint) ValidateSession(r *router.Request) (any, error) {
	var req ValidateSessionRequest
	if err := r.DecodeBody(&req); err != nil {
		return invalidSession(err), nil
	}

	resp, err := h.uc.ValidateSession(r.Context(), usecase.ValidateSessionInput{Token: req.Token})
	if err != nil {
		return invalidSession(err), nil
	}

	user := toSessionUser(resp.User)
	return ValidateSessionResponse{Valid: true, User: &user}, nil
}

// Me returns the authenticated caller.
// @Summary Current session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/auth/me [get]
func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	resp, err := h.uc.Me(r.Context())
	if err != nil {
		return nil, err
	}

	return MeResponse{
		User:      toSessionUser(resp.User),
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// Logout clears the session cookie. Tokens are not revoked server side.
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/v1/auth/logout [post]
func (h *HTTPEndpoint) Logout(*router.Request) (any, error) {
	c := h.sessionCookie("", 0)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)

	return LogoutResponse{Message: "Logged out successfully", cookie: c}, nil
}

// AuditList lists the caller's recent code attempts with masked recipients.
// @Summary OTP attempt log
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 50, max 100)"
// @Success 200 {object} AuditListResponse
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/auth/otp/logs [get]
func (h *HTTPEndpoint) AuditList(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt("limit")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.AuditList(r.Context(), usecase.AuditListInput{Limit: limit})
	if err != nil {
		return nil, err
	}

	return AuditListResponse{
		Logs: lo.Map(resp.Entries, func(e entity.AuditEntry, _ int) AuditLog {
			return AuditLog{
				ID:           e.ID,
				CreatedAt:    e.CreatedAt,
				Action:       e.Action.String(),
				Type:         e.Type.String(),
				Value:        e.MaskedRecipient(),
				Success:      e.Success,
				ErrorMessage: e.ErrorMessage,
			}
		}),
	}, nil
}

func (h *HTTPEndpoint) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   !h.cookie.Insecure,
		SameSite: http.SameSiteStrictMode,
	}
}

func invalidSession(err error) ValidateSessionResponse {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		return ValidateSessionResponse{Error: "Internal server error", status: http.StatusInternalServerError}
	}

	return ValidateSessionResponse{Error: gerr.Msg(), status: gerr.StatusCode()}
}

func toSessionUser(u usecase.SessionUser) SessionUser {
	return SessionUser{ID: u.ID, Email: u.Email, Phone: u.Phone}
}
