package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full run configuration, unmarshalled from viper.
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Outputs     OutputsConfig     `mapstructure:"outputs"`
	ThreatIntel ThreatIntelConfig `mapstructure:"threat_intel"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type LogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// OutputsConfig names the report files. Each is truncated on write.
type OutputsConfig struct {
	FailedLoginsJSON string `mapstructure:"failed_logins_json" validate:"required"`
	FailedLoginsText string `mapstructure:"failed_logins_text" validate:"required"`
	LogCSV           string `mapstructure:"log_csv" validate:"required"`
	ThreatIPsJSON    string `mapstructure:"threat_ips_json" validate:"required"`
	CombinedJSON     string `mapstructure:"combined_json" validate:"required"`
}

type ThreatIntelConfig struct {
	URL       string        `mapstructure:"url" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0,lte=5m"`
	UserAgent string        `mapstructure:"user_agent"`
}

// MetricsConfig enables the optional run metrics exports. Empty disables.
type MetricsConfig struct {
	Textfile       string `mapstructure:"textfile"`
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	Job            string `mapstructure:"job" validate:"required_with=PushgatewayURL"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper, version string) {
	v.SetDefault("log.path", "server_logs.txt")
	v.SetDefault("outputs.failed_logins_json", "failed_logins.json")
	v.SetDefault("outputs.failed_logins_text", "log_analysis.txt")
	v.SetDefault("outputs.log_csv", "log_analysis.csv")
	v.SetDefault("outputs.threat_ips_json", "threat_ips.json")
	v.SetDefault("outputs.combined_json", "combined_security_data.json")
	v.SetDefault("threat_intel.url", "http://127.0.0.1:8000/")
	v.SetDefault("threat_intel.timeout", 10*time.Second)
	v.SetDefault("threat_intel.user_agent", "logintel/"+version)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "logintel")
	v.SetDefault("logging.level", "info")
}

// LoadConfig unmarshals and validates the configuration held by v.
func LoadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their config key rather than the Go field name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the configuration and returns the first violation as a
// *ConfigValidationError.
func (c Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}

	fe := fieldErrs[0]
	return &ConfigValidationError{
		Field:  configKey(fe.Namespace()),
		Value:  fe.Value(),
		Reason: describeTag(fe),
	}
}

// configKey turns "Config.threat_intel.url" into "threat_intel.url".
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be set"
	case "required_with":
		return "must be set when " + fe.Param() + " is set"
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

type ConfigValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return "config validation error: " + e.Field + " = " +
		formatValue(e.Value) + " - " + e.Reason
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return `""`
		}
		return val
	case nil:
		return "<nil>"
	default:
		return fmt.Sprint(val)
	}
}
