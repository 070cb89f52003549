package models

// Auth service DTOs
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message     string `json:"message"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type RequestOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RequestOTPResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	UserID  int64  `json:"user_id"`
	OTP     string `json:"otp,omitempty"`
}

type UnlockAccountRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
}

// Account service DTOs
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
	AvatarURL *string `json:"avatar_url"`
}

type ChangeEmailRequest struct {
	OldEmail string `json:"old_email" binding:"required,email"`
	NewEmail string `json:"new_email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required"`
}

type ChangePhoneRequest struct {
	NewPhone string `json:"new_phone" binding:"required"`
	OTP      string `json:"otp" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword      string `json:"old_password" binding:"required"`
	NewPassword      string `json:"new_password" binding:"required"`
	NewPasswordAgain string `json:"new_password_again" binding:"required"`
}

type ProfileResponse struct {
	UserID    int64      `json:"user_id"`
	Email     string     `json:"email"`
	FullName  *string    `json:"full_name"`
	Phone     *string    `json:"phone"`
	BirthDate *string    `json:"birth_date"`
	AvatarURL string     `json:"avatar_url"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
}

// AccountView is one entry of the manage-accounts listing. Non-admin
// callers only see their own email.
type AccountView struct {
	UserID    int64   `json:"user_id,omitempty"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

type ManageAccountsResponse struct {
	Users []AccountView `json:"users"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProfileUpdatedResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type AvatarResponse struct {
	Message   string `json:"message"`
	AvatarURL string `json:"avatar_url"`
}
