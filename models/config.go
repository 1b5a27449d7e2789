package models

type ScanConfig struct {
	RootPaths        []string `mapstructure:"root_paths"`
	ExcludePaths     []string `mapstructure:"exclude_paths"`
	Extensions       []string `mapstructure:"extensions"` // empty = all files
	FollowSymlinks   bool     `mapstructure:"follow_symlinks"`
	IncludeHidden    bool     `mapstructure:"include_hidden"`
	PrefixHashBytes  int      `mapstructure:"prefix_hash_bytes"` // 0 = default 64 KiB
	MaxConcurrentIO  int      `mapstructure:"max_concurrent_io"` // 0 = auto
	ScanWorkers      int      `mapstructure:"scan_workers"`      // 0 = auto (CPU * 2)
	ProbeCommand     string   `mapstructure:"probe_command"`     // "" = ffprobe, "none" disables
	DBPath           string   `mapstructure:"db_path"`           // "" = no snapshot persistence
	LogRetentionDays int      `mapstructure:"log_retention_days"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type AppConfig struct {
	Server ServerConfig `mapstructure:"server"`
	Scan   ScanConfig   `mapstructure:"scan"`
}
