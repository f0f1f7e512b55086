package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Mode is the deployment mode (production, development).
	Mode string `mapstructure:"mode" default:"production"`
}

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// IsValidMode checks if the configured mode is known.
func (c Config) IsValidMode() bool {
	switch c.Mode {
	case ModeProduction, ModeDevelopment:
		return true
	default:
		return false
	}
}

// ServeDocs reports whether the Swagger UI is mounted.
func (c Config) ServeDocs() bool {
	return c.Mode == ModeDevelopment
}
