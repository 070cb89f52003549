package services

import (
	"auth-account/internal/apperror"
	"auth-account/internal/models"
	"auth-account/internal/repository"
	"auth-account/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"go.uber.org/zap"
)

var avatarExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

const avatarMaxMB = 5

// ObjectStore is satisfied by the minio client.
type ObjectStore interface {
	PutObject(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) (string, error)
}

type IProfileService interface {
	GetProfile(ctx context.Context, userID int64) (*models.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) error
	ChangeEmail(ctx context.Context, userID int64, req models.ChangeEmailRequest, timezone string) error
	ChangePhone(ctx context.Context, userID int64, req models.ChangePhoneRequest, timezone string) error
	ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error
	ManageAccounts(ctx context.Context, userID int64) ([]models.AccountView, error)
	UploadAvatar(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error)
}

type ProfileService struct {
	store   repository.Store
	otp     *OTPService
	objects ObjectStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewProfileService wires the account service. objects may be nil when
// object storage is not configured; avatar uploads then fail as unavailable.
func NewProfileService(store repository.Store, otp *OTPService, objects ObjectStore, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:   store,
		otp:     otp,
		objects: objects,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *ProfileService) requester(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Unauthorized("User not found")
	}
	if err != nil {
		return nil, storeError("get requester", err)
	}
	return user, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.ProfileResponse, error) {
	user, err := s.requester(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.Profiles().GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("Profile not found")
	}
	if err != nil {
		return nil, storeError("get profile", err)
	}

	avatar := models.DefaultAvatarURL
	if profile.AvatarURL.Valid && profile.AvatarURL.String != "" {
		avatar = profile.AvatarURL.String
	}

	return &models.ProfileResponse{
		UserID:    user.UserID,
		Email:     user.Email,
		FullName:  nullable(profile.FullName.String, profile.FullName.Valid),
		Phone:     nullable(profile.Phone.String, profile.Phone.Valid),
		BirthDate: nullable(profile.BirthDate.String, profile.BirthDate.Valid),
		AvatarURL: avatar,
		Role:      user.Role,
		Status:    user.Status,
	}, nil
}

func nullable(value string, valid bool) *string {
	if !valid {
		return nil
	}
	return &value
}

// UpdateProfile writes only the fields present in req.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) error {
	if _, err := s.requester(ctx, userID); err != nil {
		return err
	}

	update := models.ProfileUpdate{
		FullName:  req.FullName,
		BirthDate: req.BirthDate,
		AvatarURL: req.AvatarURL,
	}

	if req.BirthDate != nil {
		if _, err := utils.ValidateBirthDate(*req.BirthDate, s.now()); err != nil {
			return birthDateError(err)
		}
	}

	if req.Phone != nil {
		phone := utils.NormalizePhone(*req.Phone)
		if err := utils.ValidatePhone(phone); err != nil {
			return apperror.Validation("Invalid phone number")
		}
		update.Phone = &phone
	}

	if update.IsEmpty() {
		return nil
	}
	if err := s.store.Profiles().UpsertProfile(ctx, userID, update); err != nil {
		return storeError("update profile", err)
	}
	return nil
}

func birthDateError(err error) error {
	switch {
	case errors.Is(err, utils.ErrFutureBirthDate):
		return apperror.Validation("Birth date cannot be in the future")
	case errors.Is(err, utils.ErrBirthDateAge):
		return apperror.Validation("Age must be between 1 and 100 years")
	default:
		return apperror.Validation("Invalid birth_date format, expected YYYY-MM-DD")
	}
}

// ChangeEmail moves the caller's account to a new address after proving
// possession of the old one. The OTP is consumed on success.
func (s *ProfileService) ChangeEmail(ctx context.Context, userID int64, req models.ChangeEmailRequest, timezone string) error {
	owner, err := s.store.Users().GetUserByEmail(ctx, req.OldEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("Old email not found")
	}
	if err != nil {
		return storeError("get user", err)
	}
	if owner.UserID != userID {
		return apperror.Forbidden("Cannot change another account's email")
	}

	taken, err := s.store.Users().EmailExists(ctx, req.NewEmail)
	if err != nil {
		return storeError("check email", err)
	}
	if taken {
		return apperror.Conflict("New email already in use")
	}

	if _, err := s.otp.Verify(ctx, req.OldEmail, req.OTP, timezone); err != nil {
		return otpError(err)
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.otp.WithStore(tx).Consume(ctx, req.OldEmail, req.OTP); err != nil {
			return err
		}
		return tx.Users().UpdateEmail(ctx, userID, req.NewEmail)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return apperror.Conflict("New email already in use")
	}
	if err != nil {
		return txError("change email", err)
	}

	s.logger.Info("email changed", zap.Int64("user_id", userID))
	return nil
}

// ChangePhone identifies the OTP by its value alone, then requires that it
// was issued to the caller.
func (s *ProfileService) ChangePhone(ctx context.Context, userID int64, req models.ChangePhoneRequest, timezone string) error {
	phone := utils.NormalizePhone(req.NewPhone)
	if err := utils.ValidatePhone(phone); err != nil {
		return apperror.Validation("Invalid phone number")
	}

	record, err := s.otp.VerifyByCode(ctx, userID, req.OTP, timezone)
	if err != nil {
		return otpError(err)
	}
	if record.UserID != userID {
		return apperror.Forbidden("OTP was not issued to this account")
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.otp.WithStore(tx).Consume(ctx, record.Email, req.OTP); err != nil {
			return err
		}
		return tx.Profiles().UpsertProfile(ctx, userID, models.ProfileUpdate{Phone: &phone})
	})
	if err != nil {
		return txError("change phone", err)
	}
	return nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error {
	if req.NewPassword != req.NewPasswordAgain {
		return apperror.Validation("New passwords do not match")
	}

	user, err := s.requester(ctx, userID)
	if err != nil {
		return err
	}
	if !VerifyPassword(req.OldPassword, user.HashedPassword) {
		return apperror.BadRequest("Old password is incorrect")
	}

	hashed, err := hashNewPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.store.Users().UpdatePassword(ctx, userID, hashed); err != nil {
		return storeError("change password", err)
	}
	return nil
}

// ManageAccounts lists every account for admins. Other callers only see
// their own email.
func (s *ProfileService) ManageAccounts(ctx context.Context, userID int64) ([]models.AccountView, error) {
	user, err := s.requester(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Role != models.RoleAdmin {
		return []models.AccountView{{Email: user.Email}}, nil
	}

	summaries, err := s.store.Users().ListAccountSummaries(ctx)
	if err != nil {
		return nil, storeError("list accounts", err)
	}

	views := make([]models.AccountView, 0, len(summaries))
	for _, a := range summaries {
		views = append(views, models.AccountView{
			UserID:    a.UserID,
			Email:     a.Email,
			FullName:  nullable(a.FullName.String, a.FullName.Valid),
			Phone:     nullable(a.Phone.String, a.Phone.Valid),
			CreatedAt: a.CreatedAt,
		})
	}
	return views, nil
}

// UploadAvatar stores the image under avatars/<user_id>/ and points the
// profile at its public URL.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error) {
	if s.objects == nil {
		return "", apperror.Unavailable("Avatar storage is not configured")
	}
	if _, err := s.requester(ctx, userID); err != nil {
		return "", err
	}
	if err := utils.ValidateFile(file, avatarExtensions, avatarMaxMB); err != nil {
		return "", apperror.Validation(err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return "", apperror.Internal("Failed to read upload", err)
	}
	defer src.Close()

	objectName := fmt.Sprintf("avatars/%d/%s", userID, utils.GenerateSafeFilename(file.Filename, s.now()))
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.objects.PutObject(ctx, objectName, contentType, src, file.Size)
	if err != nil {
		return "", apperror.Internal("Failed to store avatar", err)
	}

	if err := s.store.Profiles().UpsertProfile(ctx, userID, models.ProfileUpdate{AvatarURL: &url}); err != nil {
		return "", storeError("save avatar url", err)
	}

	s.logger.Info("avatar uploaded", zap.Int64("user_id", userID), zap.String("object", objectName))
	return url, nil
}
