package episodes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// numberOrder sorts "999" before "1000"
const numberOrder = "LENGTH(number) ASC, number ASC"

type Repository struct {
	db *gorm.DB
}

// Ensure Repository implements EpisodeRepository interface
var _ EpisodeRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func withParts(db *gorm.DB) *gorm.DB {
	return db.Preload("Parts", func(db *gorm.DB) *gorm.DB {
		return db.Order("part_class ASC")
	})
}

func (r *Repository) GetEpisode(ctx context.Context, number string) (*models.Episode, error) {
	var episode models.Episode
	if err := withParts(r.db.WithContext(ctx)).
		Where("number = ?", number).
		First(&episode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("episode", number)
		}
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	return &episode, nil
}

func (r *Repository) ListEpisodes(ctx context.Context, page, limit int) ([]models.Episode, int64, error) {
	var episodes []models.Episode
	var total int64

	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).Model(&models.Episode{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting episodes: %w", err)
	}

	if err := withParts(r.db.WithContext(ctx)).
		Order(numberOrder).
		Limit(limit).
		Offset(offset).
		Find(&episodes).Error; err != nil {
		return nil, 0, fmt.Errorf("getting episodes: %w", err)
	}

	return episodes, total, nil
}

func (r *Repository) AllEpisodes(ctx context.Context) ([]models.Episode, error) {
	var episodes []models.Episode
	if err := withParts(r.db.WithContext(ctx)).
		Order(numberOrder).
		Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("getting episodes: %w", err)
	}
	return episodes, nil
}

func (r *Repository) CountEpisodes(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Episode{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("counting episodes: %w", err)
	}
	return total, nil
}

// SaveEpisode upserts the episode row and replaces its parts in one
// transaction. CreatedAt of an existing row is preserved.
func (r *Repository) SaveEpisode(ctx context.Context, episode *models.Episode) error {
	if episode.Number == "" {
		return NewValidationError("number", "episode number is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "number"}},
				UpdateAll: true,
			}).
			Create(episode).Error; err != nil {
			return fmt.Errorf("saving episode: %w", err)
		}

		if err := tx.Where("episode_number = ?", episode.Number).Delete(&models.Part{}).Error; err != nil {
			return fmt.Errorf("deleting parts: %w", err)
		}
		if len(episode.Parts) == 0 {
			return nil
		}
		for i := range episode.Parts {
			episode.Parts[i].ID = 0
			episode.Parts[i].EpisodeNumber = episode.Number
		}
		if err := tx.Create(&episode.Parts).Error; err != nil {
			return fmt.Errorf("saving parts: %w", err)
		}
		return nil
	})
}

// FlagFilter narrows a flag listing. Zero fields match everything.
type FlagFilter struct {
	RunID   string
	Episode string
	Kind    string
	Limit   int
}

// FlagStore is the gorm-backed audit trail of diagnostics
type FlagStore struct {
	db *gorm.DB
}

// Ensure FlagStore implements FlagRepository interface
var _ FlagRepository = (*FlagStore)(nil)

func NewFlagStore(db *gorm.DB) *FlagStore {
	return &FlagStore{db: db}
}

func (s *FlagStore) SaveFlags(ctx context.Context, runID string, flags []diagnostics.Flag) error {
	if len(flags) == 0 {
		return nil
	}
	rows := make([]models.DiagnosticFlag, len(flags))
	for i, f := range flags {
		rows[i] = models.DiagnosticFlag{
			RunID:   runID,
			Kind:    string(f.Kind),
			Episode: f.Episode,
			Part:    f.Part,
			Message: f.Message,
			Details: f.Details,
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, 100).Error; err != nil {
		return fmt.Errorf("saving flags: %w", err)
	}
	return nil
}

func (s *FlagStore) ListFlags(ctx context.Context, filter FlagFilter) ([]models.DiagnosticFlag, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := s.db.WithContext(ctx).Model(&models.DiagnosticFlag{})
	if filter.RunID != "" {
		query = query.Where("run_id = ?", filter.RunID)
	}
	if filter.Episode != "" {
		query = query.Where("episode = ?", filter.Episode)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}

	var flags []models.DiagnosticFlag
	if err := query.Order("id DESC").Limit(limit).Find(&flags).Error; err != nil {
		return nil, fmt.Errorf("listing flags: %w", err)
	}
	return flags, nil
}

// PruneFlags deletes flags recorded before the cutoff
func (s *FlagStore) PruneFlags(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.DiagnosticFlag{})
	if res.Error != nil {
		return 0, fmt.Errorf("pruning flags: %w", res.Error)
	}
	return res.RowsAffected, nil
}
