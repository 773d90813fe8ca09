package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks structural constraints on a loaded configuration.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			fields := make([]string, 0, len(errs))
			for _, fe := range errs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Namespace()), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Docs.Enabled {
		if !strings.HasPrefix(cfg.Docs.Path, "/") {
			return fmt.Errorf("invalid configuration: docs.path must start with /")
		}
		if !strings.HasPrefix(cfg.Docs.SpecPath, "/") {
			return fmt.Errorf("invalid configuration: docs.specpath must start with /")
		}
	}
	return nil
}
