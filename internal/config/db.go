package config

import "fmt"

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Address  string `mapstructure:"address"`
	DbName   string `mapstructure:"db-name"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Username == "" {
		return fmt.Errorf("db username cannot be empty")
	}
	if cfg.Password == "" {
		return fmt.Errorf("db password cannot be empty")
	}
	if cfg.Address == "" {
		return fmt.Errorf("db address cannot be empty")
	}
	if cfg.DbName == "" {
		return fmt.Errorf("db name cannot be empty")
	}
	return nil
}
