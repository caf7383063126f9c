// Package config loads gateway configuration from relata.yml and connects
// the declared gateways through the adapter registry.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/conduit-lang/relata/gateway"
)

// Config declares the gateways an application uses, keyed by the name the
// application refers to them with.
type Config struct {
	Gateways map[string]GatewayConfig `mapstructure:"gateways"`
}

// GatewayConfig configures a single gateway: either a bare adapter
// identifier, or a connection URL whose scheme names the adapter.
type GatewayConfig struct {
	Adapter string `mapstructure:"adapter"`
	URL     string `mapstructure:"url"`
}

// Load reads configuration from the given file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

// LoadDefault reads relata.yml from the working directory, with
// environment variables under the RELATA prefix taking precedence.
func LoadDefault() (*Config, error) {
	v := viper.New()
	v.SetConfigName("relata")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("RELATA")
	v.AutomaticEnv()
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file means no gateways; that is a valid setup.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for name, gw := range config.Gateways {
		if gw.Adapter == "" && gw.URL == "" {
			return nil, fmt.Errorf("gateway %s declares neither an adapter nor a url", name)
		}
	}

	return &config, nil
}

// Connect sets up every declared gateway and returns them by name. A URL
// takes precedence over a bare adapter identifier. Setup failures
// propagate untranslated, so adapter-load errors stay recognizable.
func (c *Config) Connect() (map[string]gateway.Gateway, error) {
	gateways := make(map[string]gateway.Gateway, len(c.Gateways))
	for name, gc := range c.Gateways {
		target := gc.Adapter
		if gc.URL != "" {
			target = gc.URL
		}
		gw, err := gateway.Setup(target)
		if err != nil {
			return nil, fmt.Errorf("gateway %s: %w", name, err)
		}
		gateways[name] = gw
	}
	return gateways, nil
}
