package types

import (
	"context"

	"github.com/killallgit/coffeebreak-api/internal/database"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/internal/services/episodes"
	"github.com/killallgit/coffeebreak-api/internal/services/workers"
)

// BatchRunner processes a batch of bundles end to end
type BatchRunner interface {
	Run(ctx context.Context, bundles []models.Bundle, opts ...workers.PoolOption) (*workers.BatchResult, error)
}

// ParticipantDirectory reads the stored participant registry
type ParticipantDirectory interface {
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	ListDecisions(ctx context.Context, outcome string, limit int) ([]models.NameDecision, error)
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB             *database.DB
	EpisodeService episodes.EpisodeService
	Runner         BatchRunner
	Participants   ParticipantDirectory
}
