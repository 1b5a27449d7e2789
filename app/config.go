package app

import (
	"fmt"
	"runtime"

	"github.com/LachsProducktions/mediascan/models"

	"github.com/spf13/viper"
)

const DefaultPrefixHashBytes = 64 * 1024

func LoadConfig(path string) (*models.AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg models.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg.Scan)
	if err := ValidateScanConfig(&cfg.Scan); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills zero-valued scan settings with working defaults.
func ApplyDefaults(cfg *models.ScanConfig) {
	if cfg.PrefixHashBytes <= 0 {
		cfg.PrefixHashBytes = DefaultPrefixHashBytes
	}
	if cfg.ScanWorkers <= 0 {
		cfg.ScanWorkers = runtime.NumCPU() * 2
	}
	if cfg.MaxConcurrentIO <= 0 {
		// Hashing is disk-bound, not CPU-bound. A small fixed pool keeps
		// spinning disks and network shares from thrashing.
		cfg.MaxConcurrentIO = 8
	}
	if cfg.LogRetentionDays <= 0 {
		cfg.LogRetentionDays = 14
	}
}

func ValidateScanConfig(cfg *models.ScanConfig) error {
	if len(cfg.RootPaths) == 0 {
		return fmt.Errorf("no root paths configured")
	}
	return nil
}
