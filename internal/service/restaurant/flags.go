package restaurant

import (
	"os"
	"strconv"
)

// FlagSource reports whether a restaurant is currently open. Implementations
// are expected to be cheap enough to call on every sample tick; reload
// semantics belong to the source, not to this package.
type FlagSource interface {
	IsOpen(id string) bool
}

// EnvFlagSource reads RESTAURANT_<id>_OPEN from the process environment on
// every call. An unset or unparsable flag means closed.
type EnvFlagSource struct{}

func (EnvFlagSource) IsOpen(id string) bool {
	open, err := strconv.ParseBool(os.Getenv("RESTAURANT_" + id + "_OPEN"))
	if err != nil {
		return false
	}
	return open
}

// FlagFunc adapts a function to FlagSource, used by tests.
type FlagFunc func(id string) bool

func (f FlagFunc) IsOpen(id string) bool { return f(id) }
