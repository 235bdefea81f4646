package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config keys shared by the cobra flags, the environment and the config file.
const (
	KeyEndpoint = "endpoint"
	KeyTimeout  = "timeout"
	KeyDebug    = "debug"
	KeyLogFile  = "log-file"
)

// DefaultEndpoint is the local note-creation service.
const DefaultEndpoint = "http://localhost:8000/create-note"

// EnvPrefix is prepended to upper-cased keys when reading the environment,
// e.g. NOTEKIT_ENDPOINT.
const EnvPrefix = "NOTEKIT"

// configName is the base name searched for in the working and home directories.
const configName = ".notekit"

// Config is the resolved runtime configuration.
type Config struct {
	// Endpoint is the absolute URL prompts are POSTed to.
	Endpoint string
	// Timeout bounds a single request. Zero leaves the transport default in
	// place, which never times out.
	Timeout time.Duration
	Debug   bool
	// LogFile receives log output when set.
	LogFile string
	// Source is the config file that was loaded, empty when none was found.
	Source string
}

// SetDefaults registers the defaults on v. Cobra flag bindings override them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyEndpoint, DefaultEndpoint)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogFile, "")
}

// Init wires the environment into v and loads a config file. An explicit
// configFile must exist; otherwise .notekit.{yml,yaml,json} is searched for in
// the working directory and then the home directory, and a missing file is not
// an error.
func Init(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		return LoadFile(v, configFile)
	}

	v.SetConfigName(configName)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	// Re-read the located file through the env expander.
	return LoadFile(v, v.ConfigFileUsed())
}

// LoadFile reads path into v after expanding ${env://...} references.
func LoadFile(v *viper.Viper, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content := string(raw)
	if HasEnvRefs(content) {
		content, err = ExpandEnv(content)
		if err != nil {
			return fmt.Errorf("error reading config file '%s': %w", path, err)
		}
	}

	configType := "yaml"
	if strings.HasSuffix(path, ".json") {
		configType = "json"
	}
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return fmt.Errorf("error parsing config file '%s': %w", path, err)
	}
	return nil
}

// Load resolves a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Endpoint: strings.TrimSpace(v.GetString(KeyEndpoint)),
		Timeout:  v.GetDuration(KeyTimeout),
		Debug:    v.GetBool(KeyDebug),
		LogFile:  v.GetString(KeyLogFile),
		Source:   v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the endpoint is an absolute http(s) URL and that the
// timeout is not negative.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint must not be empty")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// YAML renders the config the way a .notekit.yml file would hold it.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(struct {
		Endpoint string `yaml:"endpoint"`
		Timeout  string `yaml:"timeout"`
		Debug    bool   `yaml:"debug"`
		LogFile  string `yaml:"log-file,omitempty"`
	}{
		Endpoint: c.Endpoint,
		Timeout:  c.Timeout.String(),
		Debug:    c.Debug,
		LogFile:  c.LogFile,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(out), nil
}
