package config

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	recursive := true
	parallel := true
	return &Config{
		Explore: ExploreConfig{
			MaxPasses: 10000,
			FlatPaths: false,
			Parallel:  &parallel,
		},
		Report: ReportConfig{
			Format: "text",
			Output: "-",
		},
		Input: InputConfig{
			Directories: []string{"."},
			Include:     []string{"*.records.yaml"},
			Exclude:     []string{"vendor/**", ".git/**"},
			Recursive:   &recursive,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
