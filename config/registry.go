package config

import "github.com/spf13/viper"

// Registry module registry config struct
type Registry struct {
	InitTimeout        string
	ShutdownTimeout    string
	StrictDependencies bool
}

// getRegistryConfig returns the registry config
func getRegistryConfig(v *viper.Viper) *Registry {
	return &Registry{
		InitTimeout:        v.GetString("registry.init_timeout"),
		ShutdownTimeout:    v.GetString("registry.shutdown_timeout"),
		StrictDependencies: v.GetBool("registry.strict_dependencies"),
	}
}
