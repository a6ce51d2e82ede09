package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"ballotbox/contexts/identity-access/auth-service/domain/entities"
	domainerrors "ballotbox/contexts/identity-access/auth-service/domain/errors"
	"ballotbox/contexts/identity-access/auth-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{}, &revokedTokenModel{})
}

func (r *Repository) CreateUser(ctx context.Context, user entities.User) error {
	row := userModel{
		ID:           strings.TrimSpace(user.UserID),
		Username:     strings.TrimSpace(user.Username),
		Email:        strings.TrimSpace(user.Email),
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if violated, constraint := uniqueViolation(err); violated {
			if strings.Contains(constraint, "email") {
				return domainerrors.ErrEmailTaken
			}
			return domainerrors.ErrUsernameTaken
		}
		return r.logError("auth_repo_create_user_failed", err, "user_id", row.ID)
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("auth_repo_get_user_failed", err, "user_id", strings.TrimSpace(userID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("auth_repo_get_user_by_username_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	row := revokedTokenModel{
		TokenID:   strings.TrimSpace(tokenID),
		ExpiresAt: expiresAt.UTC(),
		RevokedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if violated, _ := uniqueViolation(err); violated {
			return nil
		}
		return r.logError("auth_repo_revoke_token_failed", err, "token_id", row.TokenID)
	}
	return nil
}

func (r *Repository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&revokedTokenModel{}).
		Where("token_id = ?", strings.TrimSpace(tokenID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("auth_repo_check_revoked_failed", err, "token_id", strings.TrimSpace(tokenID))
	}
	return count > 0, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/auth-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("auth repository operation failed", fields...)
	return err
}

type userModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex:ux_users_username"`
	Email        string    `gorm:"column:email;uniqueIndex:ux_users_email"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:       m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type revokedTokenModel struct {
	TokenID   string    `gorm:"column:token_id;primaryKey"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	RevokedAt time.Time `gorm:"column:revoked_at"`
}

func (revokedTokenModel) TableName() string {
	return "revoked_tokens"
}

func uniqueViolation(err error) (bool, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true, pgErr.ConstraintName
	}
	return false, ""
}

var _ ports.UserRepository = (*Repository)(nil)
var _ ports.RevokedTokenStore = (*Repository)(nil)
