package service

import (
	"github.com/shopspring/decimal"

	"github.com/clearbooks/reconcile-backend/internal/domain/matcher"
	"github.com/clearbooks/reconcile-backend/internal/infrastructure/config"
)

// OptionsFromConfig builds the deployment-default matching options from
// configuration. Nil knobs keep the engine defaults; an unparseable epsilon
// falls back to the engine default.
func OptionsFromConfig(cfg config.MatchingConfig) matcher.Options {
	opts := matcher.DefaultOptions()
	if cfg.MinConfidence != nil {
		opts.MinConfidence = *cfg.MinConfidence
	}
	if cfg.DateWindowDays != nil {
		opts.DateWindowDays = *cfg.DateWindowDays
	}
	opts.EnableFuzzy = cfg.EnableFuzzy
	if cfg.SimilarityThreshold != nil {
		opts.SimilarityThreshold = *cfg.SimilarityThreshold
	}

	if epsilon, err := decimal.NewFromString(cfg.AmountEpsilon); err == nil {
		opts.AmountEpsilon = epsilon
	}

	return opts
}
