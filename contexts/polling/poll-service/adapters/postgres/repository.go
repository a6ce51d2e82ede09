package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotbox/contexts/polling/poll-service/domain/entities"
	domainerrors "ballotbox/contexts/polling/poll-service/domain/errors"
	"ballotbox/contexts/polling/poll-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

// Migrate creates the tables this module owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&pollModel{}, &choiceModel{})
}

func (r *Repository) CreatePollWithChoices(ctx context.Context, poll entities.Poll) (entities.Poll, error) {
	row := pollModelFromEntity(poll)
	choices := make([]choiceModel, 0, len(poll.Choices))
	for _, choice := range poll.Choices {
		choices = append(choices, choiceModelFromEntity(choice))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Create(&choices).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return entities.Poll{}, domainerrors.ErrInvalidPollInput
		}
		return entities.Poll{}, r.logError("poll_repo_create_failed", err,
			"poll_id", strings.TrimSpace(poll.PollID),
		)
	}
	return r.GetPoll(ctx, poll.PollID)
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, r.logError("poll_repo_get_failed", err, "poll_id", strings.TrimSpace(pollID))
	}

	var choiceRows []choiceModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", row.ID).
		Order("created_at ASC, id ASC").
		Find(&choiceRows).Error; err != nil {
		return entities.Poll{}, r.logError("poll_repo_list_choices_failed", err, "poll_id", row.ID)
	}

	poll := row.toEntity()
	for _, choice := range choiceRows {
		poll.Choices = append(poll.Choices, choice.toEntity())
	}
	return poll, nil
}

func (r *Repository) ListPolls(ctx context.Context, filter ports.PollFilter) ([]entities.PollSummary, error) {
	tx := r.db.WithContext(ctx).Model(&pollModel{})
	viewer := strings.TrimSpace(filter.ViewerID)
	if viewer == "" {
		tx = tx.Where("is_active = ?", true)
	} else {
		tx = tx.Where("is_active = ? OR created_by = ?", true, viewer)
	}

	var rows []pollModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_list_failed", err, "viewer_id", viewer)
	}

	items := make([]entities.PollSummary, 0, len(rows))
	for _, row := range rows {
		// Counts are computed from the vote ledger on every read so the
		// listing can never drift from committed votes.
		var total int64
		if err := r.db.WithContext(ctx).
			Table("votes").
			Where("poll_id = ?", row.ID).
			Count(&total).Error; err != nil {
			return nil, r.logError("poll_repo_count_votes_failed", err, "poll_id", row.ID)
		}
		items = append(items, entities.PollSummary{
			PollID:      row.ID,
			Question:    row.Question,
			Description: row.Description,
			IsActive:    row.IsActive,
			CreatedBy:   derefString(row.CreatedBy),
			TotalVotes:  int(total),
			CreatedAt:   row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) UpdatePoll(ctx context.Context, poll entities.Poll) error {
	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ?", strings.TrimSpace(poll.PollID)).
		Updates(map[string]any{
			"question":    strings.TrimSpace(poll.Question),
			"description": strings.TrimSpace(poll.Description),
			"is_active":   poll.IsActive,
			"updated_at":  poll.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("poll_repo_update_failed", result.Error, "poll_id", strings.TrimSpace(poll.PollID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPollNotFound
	}
	return nil
}

func (r *Repository) DeletePoll(ctx context.Context, pollID string) error {
	id := strings.TrimSpace(pollID)
	// Votes reference both the poll and its choices; remove them first so the
	// delete stays valid without relying on FK cascade configuration.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM votes WHERE poll_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(&choiceModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&pollModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrPollNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPollNotFound) {
			return err
		}
		return r.logError("poll_repo_delete_failed", err, "poll_id", id)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "polling/poll-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("poll repository operation failed", fields...)
	return err
}

type pollModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Question    string    `gorm:"column:question"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedBy   *string   `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (pollModel) TableName() string {
	return "polls"
}

func pollModelFromEntity(poll entities.Poll) pollModel {
	row := pollModel{
		ID:          strings.TrimSpace(poll.PollID),
		Question:    strings.TrimSpace(poll.Question),
		Description: strings.TrimSpace(poll.Description),
		IsActive:    poll.IsActive,
		CreatedAt:   poll.CreatedAt.UTC(),
		UpdatedAt:   poll.UpdatedAt.UTC(),
	}
	if creator := strings.TrimSpace(poll.CreatedBy); creator != "" {
		row.CreatedBy = &creator
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m pollModel) toEntity() entities.Poll {
	return entities.Poll{
		PollID:      m.ID,
		Question:    m.Question,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedBy:   derefString(m.CreatedBy),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type choiceModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	PollID    string    `gorm:"column:poll_id;uniqueIndex:ux_choices_poll_text"`
	Text      string    `gorm:"column:text;uniqueIndex:ux_choices_poll_text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (choiceModel) TableName() string {
	return "choices"
}

func choiceModelFromEntity(choice entities.Choice) choiceModel {
	row := choiceModel{
		ID:        strings.TrimSpace(choice.ChoiceID),
		PollID:    strings.TrimSpace(choice.PollID),
		Text:      strings.TrimSpace(choice.Text),
		CreatedAt: choice.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m choiceModel) toEntity() entities.Choice {
	return entities.Choice{
		ChoiceID:  m.ID,
		PollID:    m.PollID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.PollRepository = (*Repository)(nil)
