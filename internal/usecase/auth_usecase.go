package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/delivery/http/middleware"
	"go-clinic-appointment/internal/domain/entity"
	"go-clinic-appointment/internal/domain/repository"
	"go-clinic-appointment/internal/service"
	"go-clinic-appointment/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type AuthUsecase interface {
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.TokenResponse, error)
	DoctorLogin(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	PatientLogin(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	adminRepo    repository.AdminRepository
	doctorRepo   repository.DoctorRepository
	patientRepo  repository.PatientRepository
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
	auditService service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	adminRepo repository.AdminRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		adminRepo:    adminRepo,
		doctorRepo:   doctorRepo,
		patientRepo:  patientRepo,
		jwtService:   jwtService,
		redisClient:  redisClient,
		auditService: auditService,
	}
}

// AdminLogin authenticates an admin by username and mints admin-role tokens.
func (u *authUsecase) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.TokenResponse, error) {
	admin, err := u.adminRepo.FindByUsername(u.db.WithContext(ctx), req.Username)
	if err != nil {
		u.log.Warnf("Failed to find admin %s: %+v", req.Username, err)
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, admin.ID, admin.Username, entity.RoleAdmin)
}

// DoctorLogin authenticates a doctor by email.
func (u *authUsecase) DoctorLogin(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	doctor, err := u.doctorRepo.FindByEmail(u.db.WithContext(ctx), req.Email)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.Email, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doctor.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, doctor.ID, doctor.Email, entity.RoleDoctor)
}

// PatientLogin authenticates a patient by email.
func (u *authUsecase) PatientLogin(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	patient, err := u.patientRepo.FindByEmail(u.db.WithContext(ctx), req.Email)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.Email, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(patient.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, patient.ID, patient.Email, entity.RolePatient)
}

// issueTokens mints an access/refresh token pair and registers both in
// Redis. A token absent from Redis is treated as revoked by the middleware.
func (u *authUsecase) issueTokens(ctx context.Context, subject uuid.UUID, email, role string) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(subject, email, role)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(subject, email, role)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	accessKey := fmt.Sprintf("access_token:%s:%s", subject.String(), accessTokenID)
	if err := u.redisClient.Set(ctx, accessKey, "1", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in redis: %+v", err)
		return nil, err
	}

	refreshKey := fmt.Sprintf("refresh_token:%s:%s", subject.String(), refreshTokenID)
	if err := u.redisClient.Set(ctx, refreshKey, "1", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in redis: %+v", err)
		return nil, err
	}

	u.auditService.LogAction(ctx, u.db.WithContext(ctx), &subject, entity.AuditActionLogin, "auth", subject.String(), entity.JSON{
		"role": role,
	})

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// Logout revokes every token of the logged-in caller.
func (u *authUsecase) Logout(ctx context.Context) error {
	identity, ok := middleware.GetIdentityFromContext(ctx)
	if !ok {
		return errors.New("identity not found in context")
	}

	for _, pattern := range []string{
		fmt.Sprintf("access_token:%s:*", identity.Subject.String()),
		fmt.Sprintf("refresh_token:%s:*", identity.Subject.String()),
	} {
		keys, err := u.redisClient.Keys(ctx, pattern).Result()
		if err != nil {
			u.log.Warnf("Failed to list token keys: %+v", err)
			return err
		}
		if len(keys) > 0 {
			if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
				u.log.Warnf("Failed to delete tokens: %+v", err)
				return err
			}
		}
	}

	u.auditService.LogAction(ctx, u.db.WithContext(ctx), &identity.Subject, entity.AuditActionLogout, "auth", identity.Subject.String(), nil)

	u.log.Infof("Logged out: subject=%s", identity.Subject)
	return nil
}

// RefreshToken rotates a valid refresh token into a new token pair. The old
// refresh token is revoked so it can be used once.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	refreshKey := fmt.Sprintf("refresh_token:%s:%s", claims.Subject.String(), claims.TokenID)
	exists, err := u.redisClient.Exists(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to check refresh token in redis: %+v", err)
		return nil, err
	}
	if exists == 0 {
		return nil, ErrTokenRevoked
	}

	if err := u.redisClient.Del(ctx, refreshKey).Err(); err != nil {
		u.log.Warnf("Failed to revoke refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, claims.Subject, claims.Email, claims.Role)
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint
// violation containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key
// violation containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
