package projectapi

import (
	"fmt"
	"reflect"

	"github.com/c360studio/semstreams/component"
)

// projectAPISchema holds the configuration schema generated from Config.
var projectAPISchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the project-api component.
type Config struct {
	// Prefix is the path segment the API is mounted under.
	Prefix string `json:"prefix" schema:"type:string,description:API path prefix,category:basic,default:api"`

	// MaxBodyBytes limits request body sizes.
	MaxBodyBytes int64 `json:"max_body_bytes" schema:"type:int,description:Maximum request body size in bytes,category:advanced,default:1048576"`

	// LibraryBase is the IRI base for library entities without a URI of their own.
	LibraryBase string `json:"library_base" schema:"type:string,description:IRI base for exported library entities,category:advanced,default:urn:cello:"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Prefix:       "api",
		MaxBodyBytes: 1 << 20,
		LibraryBase:  "urn:cello:",
	}
}

// Validate verifies the configuration is consistent.
func (c *Config) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	return nil
}
