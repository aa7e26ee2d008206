package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// GraphPath is the HCL graph document. A missing file starts an empty
	// graph.
	GraphPath string `validate:"required"`
	// ManifestPaths are extra node-type manifests loaded on top of the
	// compiled-in modules. A directory contributes every .hcl file in it.
	ManifestPaths []string `validate:"dive,required"`
	SaveOnExit    bool

	FrameRate float64 `validate:"gt=0,lte=1000"`
	// Frames is the number of frames to run. 0 runs until the context is
	// cancelled.
	Frames int `validate:"gte=0"`

	EditorURL          string `validate:"omitempty,url"`
	EditorNamespace    string
	InsecureSkipVerify bool

	LogFormat       string `validate:"oneof=text json"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	HealthcheckPort int    `validate:"gte=0,lte=65535"`
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, formatValidationErrors(err)
	}
	return &cfg, nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), getErrorMessage(fe)))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		return "must be a valid URL"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}
