package config

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
)

// OracleSubjectConfig seeds one price subject at first startup. Subjects
// already present in the database win over the seed values.
type OracleSubjectConfig struct {
	Id             string        `mapstructure:"id"`
	InitialPrice   string        `mapstructure:"initial-price"`
	UpdateInterval time.Duration `mapstructure:"update-interval"`
}

type OracleConfig struct {
	Subjects []OracleSubjectConfig `mapstructure:"subjects"`
}

func (cfg *OracleConfig) Validate() error {
	seen := make(map[string]struct{}, len(cfg.Subjects))
	for _, subject := range cfg.Subjects {
		if subject.Id == "" {
			return fmt.Errorf("oracle subject id cannot be empty")
		}
		if _, ok := seen[subject.Id]; ok {
			return fmt.Errorf("duplicate oracle subject %s", subject.Id)
		}
		seen[subject.Id] = struct{}{}

		price, ok := sdkmath.NewIntFromString(subject.InitialPrice)
		if !ok || !price.IsPositive() {
			return fmt.Errorf("oracle subject %s has invalid initial price %q", subject.Id, subject.InitialPrice)
		}
		if subject.UpdateInterval <= 0 {
			return fmt.Errorf("oracle subject %s update-interval must be positive", subject.Id)
		}
	}
	return nil
}
