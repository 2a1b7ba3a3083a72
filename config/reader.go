package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
)

// EnvPrefix is the prefix of the environment variables overriding the config values.
// I.e. FANCY_GATEWAY_PORT overrides 'gateway.port'.
const EnvPrefix = "FANCY"

// ViperSetDefaults sets the default values for the viper config.
func ViperSetDefaults(v *viper.Viper) {
	setDefaults(v)
}

// ReadConfig reads the config named 'config' from the working or 'configs' directory.
func ReadConfig() (*Config, error) {
	return ReadNamedConfig("config")
}

// ReadNamedConfig reads the config with the provided name.
func ReadNamedConfig(name string) (*Config, error) {
	v := newViper()
	v.SetConfigName(name)
	v.AddConfigPath(".")
	v.AddConfigPath("configs")
	return readViper(v)
}

// ReadConfigFile reads the config from the file at provided 'path'.
func ReadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	return readViper(v)
}

// ReadDefaultConfig reads the default configuration.
func ReadDefaultConfig() *Config {
	v := newViper()
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		log.Debugf("Unmarshaling default Config failed: %v", err)
		panic(err)
	}
	return c
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func readViper(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewDet(ClassConfigRead, "reading config failed").SetDetails(err.Error())
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		log.Debugf("Unmarshaling Config failed. %v", err)
		return nil, errors.NewDet(ClassConfigRead, "unmarshaling config failed").SetDetails(err.Error())
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	keys := map[string]interface{}{
		"log_level":                          "info",
		"naming_convention":                  "snake",
		"fancy.type_casting":                 true,
		"fancy.reserved_params":              DefaultReservedParams(),
		"fancy.search_param":                 "search",
		"fancy.ordering_param":               "ordering",
		"fancy.limit_param":                  "limit",
		"fancy.offset_param":                 "offset",
		"fancy.max_limit":                    0,
		"gateway.port":                       8080,
		"gateway.read_timeout":               "10s",
		"gateway.read_header_timeout":        "5s",
		"gateway.write_timeout":              "10s",
		"gateway.idle_timeout":               "120s",
		"gateway.shutdown_timeout":           "10s",
		"gateway.router.prefix":              "",
		"gateway.router.default_middlewares": []string{CredentialMiddleware},
		"repository.driver":                  "memory",
		"auth.header":                        "Authorization",
		"auth.id_claim":                      "id",
	}

	for k, value := range keys {
		v.SetDefault(k, value)
	}
}
