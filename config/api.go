package config

// APIConfig configures the HTTP plan-history endpoint.
type APIConfig struct {
	// Enabled starts the HTTP listener when true.
	Enabled bool `json:"enabled"`
	// Address is the listen address, e.g. ":8080".
	Address string `json:"address"`
	// Token is the bearer token required on requests. Empty disables auth.
	Token string `json:"token"`
}
