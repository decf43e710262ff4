package dto

import (
	"time"

	"rotkit/internal/entity"
	"rotkit/internal/service"
)

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"omitempty,max=120"`
}

type CompleteSignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type CustomerLoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type AdminCredentialsRequest struct {
	AdminID  string `json:"adminId" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type ChallengeOTPRequest struct {
	ChallengeToken string `json:"challengeToken" validate:"required"`
	OTP            string `json:"otp" validate:"required,len=6,numeric"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ChallengeResponse struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	Email              string `json:"email"`
	ChallengeToken     string `json:"challengeToken"`
	ChallengeExpiresIn int64  `json:"challengeExpiresIn"`
}

type AuthResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      PrincipalResponse `json:"user"`
}

type ResendStatusResponse struct {
	Success   bool `json:"success"`
	CanResend bool `json:"canResend"`
	WaitTime  int  `json:"waitTime"`
}

type PrincipalResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Name         string     `json:"name,omitempty"`
	FirstName    string     `json:"firstName,omitempty"`
	LastName     string     `json:"lastName,omitempty"`
	AdminID      string     `json:"adminId,omitempty"`
	ProfileImage *string    `json:"profileImage,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

type MeResponse struct {
	Success bool              `json:"success"`
	User    PrincipalResponse `json:"user"`
}

type ProfileImageResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
	URL      string `json:"url"`
	Path     string `json:"path"`
	Bucket   string `json:"bucket"`
}

type SecurityLogResponse struct {
	ID            string                `json:"id"`
	PrincipalID   *string               `json:"principalId,omitempty"`
	PrincipalRole *string               `json:"principalRole,omitempty"`
	IPAddress     *string               `json:"ipAddress,omitempty"`
	Action        entity.SecurityAction `json:"action"`
	Metadata      any                   `json:"metadata,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

type SecurityLogListResponse struct {
	Success bool                  `json:"success"`
	Logs    []SecurityLogResponse `json:"logs"`
}

func PrincipalResponseFrom(principal service.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:           principal.ID.String(),
		Email:        principal.Email,
		Role:         string(principal.Role),
		Name:         principal.Name,
		FirstName:    principal.FirstName,
		LastName:     principal.LastName,
		AdminID:      principal.AdminID,
		ProfileImage: principal.ProfileImage,
		LastLoginAt:  principal.LastLoginAt,
	}
}

func SecurityLogResponsesFrom(logs []entity.SecurityLog) []SecurityLogResponse {
	responses := make([]SecurityLogResponse, 0, len(logs))
	for _, log := range logs {
		response := SecurityLogResponse{
			ID:        log.ID.String(),
			IPAddress: log.IPAddress,
			Action:    log.Action,
			CreatedAt: log.CreatedAt,
		}
		if log.PrincipalID != nil {
			id := log.PrincipalID.String()
			response.PrincipalID = &id
		}
		if log.PrincipalRole != nil {
			role := string(*log.PrincipalRole)
			response.PrincipalRole = &role
		}
		if len(log.Metadata) > 0 {
			response.Metadata = log.Metadata
		}
		responses = append(responses, response)
	}
	return responses
}
