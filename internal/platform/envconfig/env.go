package envconfig

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Get returns the value of the requested environment variable or the supplied fallback when empty.
func Get(name string, fallback string) string {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		return value
	}
	return fallback
}

// GetFloat parses a float variable, returning fallback when unset or malformed.
func GetFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(Get(name, ""))
	if raw == "" {
		return fallback
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return val
}

// GetList splits a comma separated variable, dropping blank items.
func GetList(name string) []string {
	var out []string
	for _, item := range strings.Split(Get(name, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate validates a struct using validator tags.
func Validate(v any) error {
	return validate.Struct(v)
}
