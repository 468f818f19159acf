package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/repository"
	"github.com/cura-agent/roster-service/internal/roster"
)

// LoadSeeds resolves the starting rosters. A YAML seed file replaces the
// built-in mock staff; rows in Postgres replace both. An empty Postgres
// category is bootstrapped from the resolved seed.
func LoadSeeds(ctx context.Context, seedFile string, repo repository.RosterRepository, logger *zap.Logger) (roster.Seeds, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	seeds := roster.DefaultSeeds()
	if seedFile != "" {
		fromFile, err := roster.LoadSeedFile(seedFile)
		if err != nil {
			return nil, err
		}
		if errs := fromFile.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("seed file %s: %w", seedFile, errors.Join(errs...))
		}
		seeds = fromFile
		logger.Info("roster seed file loaded", zap.String("path", seedFile))
	}

	if repo == nil {
		return seeds, nil
	}

	for _, category := range domain.Categories {
		stored, err := repo.ListByCategory(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("load %s roster: %w", category, err)
		}
		if len(stored) > 0 {
			seeds[category] = stored
			continue
		}
		for _, entry := range seeds[category] {
			if err := repo.Upsert(ctx, category, entry); err != nil {
				return nil, fmt.Errorf("bootstrap %s roster: %w", category, err)
			}
		}
		logger.Info("roster bootstrapped",
			zap.String("category", string(category)), zap.Int("entries", len(seeds[category])))
	}
	return seeds, nil
}
