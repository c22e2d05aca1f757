// Package stage holds the configurable read transforms and predicates that
// the pipeline threads reads through. Each kind is its own struct so the
// parameters are resolved where the stage is built.
package stage

import (
	"fmt"

	"github.com/heyfastq/heyfastq-go/internal/read"
)

// Transform rewrites a read. Apply never modifies its argument.
type Transform interface {
	Apply(r read.Read) (read.Read, error)
	Validate() error
	Name() string
}

// Predicate decides whether a read is kept.
type Predicate interface {
	Keep(r read.Read) (bool, error)
	Validate() error
	Name() string
}

// ConfigError is returned when a stage parameter is out of range.
type ConfigError struct {
	Stage  string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Stage, e.Field, e.Reason)
}

// Default parameters
const (
	DefaultLength    = 100
	DefaultWindow    = 4
	DefaultThreshold = 20
	DefaultMinKScore = 0.55
)
