package config

import "github.com/spf13/viper"

// Feature feature flag config struct
type Feature struct {
	EnvPrefix string
	// Flags statically enables or disables flags from the config file,
	// applied after environment seeding.
	Flags map[string]bool
}

// getFeatureConfig returns the feature config
func getFeatureConfig(v *viper.Viper) *Feature {
	f := &Feature{
		EnvPrefix: v.GetString("feature.env_prefix"),
		Flags:     map[string]bool{},
	}
	for name, enabled := range v.GetStringMap("feature.flags") {
		if b, ok := enabled.(bool); ok {
			f.Flags[name] = b
		}
	}
	return f
}
