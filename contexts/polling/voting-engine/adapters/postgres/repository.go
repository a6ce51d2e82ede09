package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotbox/contexts/polling/voting-engine/domain/entities"
	domainerrors "ballotbox/contexts/polling/voting-engine/domain/errors"
	"ballotbox/contexts/polling/voting-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
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

// Migrate creates the tables this module owns. The unique index on
// (voter_id, poll_id) is the constraint-level backstop for admission.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&voteModel{}, &outboxModel{})
}

// AdmitVote serializes contenders on the same poll with a row-level lock,
// re-checks the ledger inside the transaction, and inserts the vote together
// with its audit outbox row. Races that slip past the lock die on the
// (voter_id, poll_id) unique index and are reported as ErrAlreadyVoted, never
// as a raw storage fault.
func (r *Repository) AdmitVote(ctx context.Context, vote entities.Vote, event ports.EventEnvelope) (entities.Vote, error) {
	row := voteModelFromEntity(vote)
	var admitted entities.Vote

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pollRow pollRefModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", row.PollID).
			First(&pollRow).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPollNotFound
			}
			return err
		}

		var existing voteModel
		err := tx.
			Where("poll_id = ?", row.PollID).
			Where("voter_id = ?", row.VoterID).
			First(&existing).
			Error
		if err == nil {
			admitted = existing.toEntity()
			return domainerrors.ErrAlreadyVoted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := insertOutboxEnvelopeTx(tx, event); err != nil {
			return err
		}
		admitted = row.toEntity()
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrAlreadyVoted),
			errors.Is(err, domainerrors.ErrPollNotFound):
			return admitted, err
		case isUniqueViolation(err):
			if existing, found, lookupErr := r.GetVoteByVoter(ctx, vote.PollID, vote.VoterID); lookupErr == nil && found {
				return existing, domainerrors.ErrAlreadyVoted
			}
			return entities.Vote{}, domainerrors.ErrAlreadyVoted
		case isLockContention(err):
			return entities.Vote{}, domainerrors.ErrVoteConflict
		default:
			return entities.Vote{}, r.logError("vote_repo_admit_failed", err,
				"vote_id", strings.TrimSpace(vote.VoteID),
				"poll_id", strings.TrimSpace(vote.PollID),
				"voter_id", strings.TrimSpace(vote.VoterID),
			)
		}
	}
	return admitted, nil
}

func (r *Repository) GetVoteByVoter(ctx context.Context, pollID string, voterID string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("vote_repo_get_by_voter_failed", err,
			"poll_id", strings.TrimSpace(pollID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotesByPoll(ctx context.Context, pollID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Order("voted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("vote_repo_list_by_poll_failed", err,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListVoterHistory(ctx context.Context, voterID string) ([]entities.VoterHistoryItem, error) {
	var rows []historyRow
	err := r.db.WithContext(ctx).
		Table("votes AS v").
		Select("v.id, v.poll_id, p.question AS poll_question, v.choice_id, c.text AS choice_text, v.voted_at").
		Joins("JOIN polls AS p ON p.id = v.poll_id").
		Joins("JOIN choices AS c ON c.id = v.choice_id").
		Where("v.voter_id = ?", strings.TrimSpace(voterID)).
		Order("v.voted_at DESC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("vote_repo_list_history_failed", err,
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	items := make([]entities.VoterHistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.VoterHistoryItem{
			VoteID:       row.ID,
			PollID:       row.PollID,
			PollQuestion: row.PollQuestion,
			ChoiceID:     row.ChoiceID,
			ChoiceText:   row.ChoiceText,
			VotedAt:      row.VotedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (ports.PollProjection, error) {
	var row pollRefModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PollProjection{}, domainerrors.ErrPollNotFound
		}
		return ports.PollProjection{}, r.logError("vote_repo_get_poll_failed", err,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	return row.toProjection(), nil
}

func (r *Repository) GetChoice(ctx context.Context, choiceID string) (ports.ChoiceProjection, error) {
	var row choiceRefModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(choiceID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ChoiceProjection{}, domainerrors.ErrChoiceNotFound
		}
		return ports.ChoiceProjection{}, r.logError("vote_repo_get_choice_failed", err,
			"choice_id", strings.TrimSpace(choiceID),
		)
	}
	return ports.ChoiceProjection{
		ChoiceID: row.ID,
		PollID:   row.PollID,
		Text:     row.Text,
	}, nil
}

func (r *Repository) ListChoices(ctx context.Context, pollID string) ([]ports.ChoiceProjection, error) {
	var rows []choiceRefModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("vote_repo_list_choices_failed", err,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	items := make([]ports.ChoiceProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.ChoiceProjection{
			ChoiceID: row.ID,
			PollID:   row.PollID,
			Text:     row.Text,
		})
	}
	return items, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("vote_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("vote_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrVoteConflict
	}
	return nil
}

func insertOutboxEnvelopeTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:  strings.TrimSpace(envelope.EventID),
		EventType: strings.TrimSpace(envelope.EventType),
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: envelope.OccurredAtUTC.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return tx.Create(&row).Error
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "polling/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("vote repository operation failed", fields...)
	return err
}

type voteModel struct {
	ID       string    `gorm:"column:id;primaryKey"`
	VoterID  string    `gorm:"column:voter_id;uniqueIndex:ux_votes_voter_poll"`
	ChoiceID string    `gorm:"column:choice_id"`
	PollID   string    `gorm:"column:poll_id;uniqueIndex:ux_votes_voter_poll"`
	VotedAt  time.Time `gorm:"column:voted_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:       strings.TrimSpace(vote.VoteID),
		VoterID:  strings.TrimSpace(vote.VoterID),
		ChoiceID: strings.TrimSpace(vote.ChoiceID),
		PollID:   strings.TrimSpace(vote.PollID),
		VotedAt:  vote.VotedAt.UTC(),
	}
	if row.VotedAt.IsZero() {
		row.VotedAt = time.Now().UTC()
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:   m.ID,
		VoterID:  m.VoterID,
		ChoiceID: m.ChoiceID,
		PollID:   m.PollID,
		VotedAt:  m.VotedAt.UTC(),
	}
}

type historyRow struct {
	ID           string    `gorm:"column:id"`
	PollID       string    `gorm:"column:poll_id"`
	PollQuestion string    `gorm:"column:poll_question"`
	ChoiceID     string    `gorm:"column:choice_id"`
	ChoiceText   string    `gorm:"column:choice_text"`
	VotedAt      time.Time `gorm:"column:voted_at"`
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "vote_outbox"
}

// pollRefModel and choiceRefModel read the poll-service tables the ledger
// references; this module never writes them.
type pollRefModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Question    string    `gorm:"column:question"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedBy   *string   `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (pollRefModel) TableName() string {
	return "polls"
}

func (m pollRefModel) toProjection() ports.PollProjection {
	createdBy := ""
	if m.CreatedBy != nil {
		createdBy = strings.TrimSpace(*m.CreatedBy)
	}
	return ports.PollProjection{
		PollID:      m.ID,
		Question:    m.Question,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedBy:   createdBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type choiceRefModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	PollID    string    `gorm:"column:poll_id"`
	Text      string    `gorm:"column:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (choiceRefModel) TableName() string {
	return "choices"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isLockContention detects deadlocks (40P01) and lock-wait timeouts (55P03);
// both surface as a retryable conflict.
func isLockContention(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40P01" || pgErr.Code == "55P03")
}

var _ ports.VoteLedger = (*Repository)(nil)
var _ ports.PollCatalog = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
