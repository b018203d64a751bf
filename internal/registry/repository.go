package registry

import (
	"context"
	"log"

	"github.com/killallgit/coffeebreak-api/internal/models"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the registry in the participants, participant_variants
// and name_decisions tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new registry repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FlushStats counts the rows written by Flush
type FlushStats struct {
	Participants int
	Variants     int
	Decisions    int
}

// Load builds a registry from the stored roster and audit log
func (r *Repository) Load(ctx context.Context) (*Registry, error) {
	var participants []models.Participant
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC").
		Find(&participants).Error
	if err != nil {
		return nil, apperrors.DatabaseError("load participants", err)
	}

	var decisions []models.NameDecision
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&decisions).Error; err != nil {
		return nil, apperrors.DatabaseError("load name decisions", err)
	}

	reg := New()
	for _, p := range participants {
		variants := make([]string, 0, len(p.Variants))
		for _, v := range p.Variants {
			variants = append(variants, v.Raw)
		}
		reg.restore(p.Canonical, variants, p.CreatedAt)
	}
	reg.restoreDecisions(decisions)

	log.Printf("[INFO] Loaded participant registry: %d canonical names, %d decisions", len(participants), len(decisions))
	return reg, nil
}

// Flush writes everything added to reg since it was loaded or last flushed.
// Rows are only ever inserted.
func (r *Repository) Flush(ctx context.Context, reg *Registry) (FlushStats, error) {
	p := reg.pending()
	var stats FlushStats

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range p.entries {
			row := models.Participant{Canonical: e.Canonical, CreatedAt: e.CreatedAt}
			res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "canonical"}}, DoNothing: true}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			stats.Participants += int(res.RowsAffected)
		}

		for canonical, raws := range p.variants {
			var owner models.Participant
			if err := tx.Where("canonical = ?", canonical).First(&owner).Error; err != nil {
				return err
			}
			for _, raw := range raws {
				row := models.ParticipantVariant{ParticipantID: owner.ID, Raw: raw}
				res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
				if res.Error != nil {
					return res.Error
				}
				stats.Variants += int(res.RowsAffected)
			}
		}

		if len(p.decisions) > 0 {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&p.decisions, 100)
			if res.Error != nil {
				return res.Error
			}
			stats.Decisions = int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return stats, apperrors.DatabaseError("flush registry", err)
	}

	reg.markPersisted(p)
	return stats, nil
}

// ListParticipants returns the stored roster with variants, alphabetically
func (r *Repository) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("canonical ASC").
		Find(&participants).Error
	if err != nil {
		return nil, apperrors.DatabaseError("list participants", err)
	}
	return participants, nil
}

// ListDecisions returns stored decisions, newest first, optionally filtered by outcome
func (r *Repository) ListDecisions(ctx context.Context, outcome string, limit int) ([]models.NameDecision, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if outcome != "" {
		query = query.Where("outcome = ?", outcome)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var decisions []models.NameDecision
	if err := query.Find(&decisions).Error; err != nil {
		return nil, apperrors.DatabaseError("list name decisions", err)
	}
	return decisions, nil
}
