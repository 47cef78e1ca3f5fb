package config

import (
	"fmt"

	corpuserrors "github.com/standardbeagle/corpusd/internal/errors"
)

// Validate checks that a loaded Config is usable, matching the teacher's
// Validator.ValidateAndSetDefaults shape of one error-returning check per
// section.
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return corpuserrors.NewCorpusError("config.server", err)
	}
	if err := validateIndex(&cfg.Index); err != nil {
		return corpuserrors.NewCorpusError("config.index", err)
	}
	if len(cfg.Corpus.Roots) == 0 {
		return corpuserrors.NewCorpusError("config.corpus", fmt.Errorf("at least one corpus root is required"))
	}
	return nil
}

func validateServer(s *Server) error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("Port must be between 1 and 65535, got %d", s.Port)
	}
	if s.MaxActiveClients <= 0 {
		return fmt.Errorf("MaxActiveClients must be positive, got %d", s.MaxActiveClients)
	}
	if s.ClientWorkers <= 0 {
		return fmt.Errorf("ClientWorkers must be positive, got %d", s.ClientWorkers)
	}
	return nil
}

func validateIndex(idx *Index) error {
	if idx.IngestWorkers <= 0 {
		return fmt.Errorf("IngestWorkers must be positive, got %d", idx.IngestWorkers)
	}
	if idx.RefreshIntervalSec <= 0 {
		return fmt.Errorf("RefreshIntervalSec must be positive, got %d", idx.RefreshIntervalSec)
	}
	return nil
}
