// Package seed loads the initial participant list into an empty store.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/storage"
)

// ErrInvalidSeed is returned for seed data that cannot be used
var ErrInvalidSeed = errors.New("invalid seed data")

// Service seeds participants
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new seed Service
func New(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		logger:  logger.With(slog.String("component", "seed-service")),
	}
}

func strPtr(v string) *string { return &v }

// DefaultParticipants is the built-in participant list used when no seed file exists
func DefaultParticipants() []*model.Participant {
	return []*model.Participant{
		{ID: 1, Name: "Shadowdark", AvatarURL: strPtr("/avatars/shadowdark.png")},
		{ID: 2, Name: "Deadpool", AvatarURL: strPtr("/avatars/deadpool.png")},
		{ID: 3, Name: "Dyx", AvatarURL: strPtr("/avatars/dyx.png")},
		{ID: 4, Name: "Mostacho", AvatarURL: strPtr("/avatars/mostacho.png")},
		{ID: 5, Name: "Rueda Desinflada", AvatarURL: strPtr("/avatars/rueda.png")},
	}
}

// LoadFromFile seeds participants from a JSON array file. A missing file
// falls back to DefaultParticipants. Returns the number of participants saved.
func (s *Service) LoadFromFile(ctx context.Context, path string) (int, error) {
	participants := DefaultParticipants()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			s.logger.Warn("seed file not found, using defaults", slog.String("path", path))
		case err != nil:
			return 0, err
		default:
			participants = nil
			if err := json.Unmarshal(data, &participants); err != nil {
				return 0, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
			}
		}
	}

	return s.Load(ctx, participants)
}

// Load saves participants when the store has none yet
func (s *Service) Load(ctx context.Context, participants []*model.Participant) (int, error) {
	for i, p := range participants {
		if strings.TrimSpace(p.Name) == "" {
			return 0, fmt.Errorf("%w: participant %d has no name", ErrInvalidSeed, i)
		}
	}

	existing, err := s.storage.ListParticipants(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.logger.Info("participants already present, skipping seed", slog.Int("count", len(existing)))
		return 0, nil
	}

	for _, p := range participants {
		if err := s.storage.SaveParticipant(ctx, p); err != nil {
			return 0, fmt.Errorf("failed to seed %s: %w", p.Name, err)
		}
	}

	s.logger.Info("participants seeded", slog.Int("count", len(participants)))
	return len(participants), nil
}
