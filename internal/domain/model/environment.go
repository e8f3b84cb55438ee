package model

// EnvironmentConfigVersion is the schema version of EnvironmentConfig.
const EnvironmentConfigVersion = 1

// EnvironmentConfig carries host defaults for new wheels.
type EnvironmentConfig struct {
	Version         int     `json:"version"`
	DefaultDuration float64 `json:"defaultDuration"` // seconds
	PrimaryColor    string  `json:"primaryColor"`
	SecondaryColor  string  `json:"secondaryColor"`
	ShowConfetti    bool    `json:"showConfetti"`
}

// DefaultEnvironment is used when a host supplies no defaults of its own.
func DefaultEnvironment() EnvironmentConfig {
	return EnvironmentConfig{
		Version:         EnvironmentConfigVersion,
		DefaultDuration: 5,
		PrimaryColor:    "#3B82F6",
		SecondaryColor:  "#F59E0B",
		ShowConfetti:    true,
	}
}
