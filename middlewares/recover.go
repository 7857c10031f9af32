// Package middlewares collects built-in Middleware implementations,
// adapted from the teacher framework's gases package (spec.md §4.12).
package middlewares

import (
	"fmt"
	"runtime"

	"github.com/halcyon-http/halcyon"
)

// RecoverConfig configures Recover.
type RecoverConfig struct {
	// StackSize is the size of the stack trace buffer captured on panic.
	//
	// Default value: 4096
	StackSize int

	// StackAll includes the stacks of every other goroutine, not just the
	// one that panicked.
	//
	// Default value: false
	StackAll bool

	// Logger receives a formatted record of every recovered panic. If
	// nil, nothing is logged.
	Logger *halcyon.Logger
}

// DefaultRecoverConfig is the config used by Recover.
var DefaultRecoverConfig = RecoverConfig{StackSize: 4 << 10}

// Recover returns a Middleware that converts a panic anywhere in the
// downstream chain into a 500 error Response instead of crashing the
// connection's goroutine, filling the same role as the teacher's Recover
// gas. Server.invoke already recovers panics that escape every middleware,
// so Recover additionally buys a stack trace at the point of panic rather
// than only at the connection boundary.
func Recover() halcyon.Middleware {
	return RecoverWithConfig(DefaultRecoverConfig)
}

// RecoverWithConfig is like Recover but accepts an explicit RecoverConfig.
func RecoverWithConfig(config RecoverConfig) halcyon.Middleware {
	if config.StackSize == 0 {
		config.StackSize = DefaultRecoverConfig.StackSize
	}

	return func(next halcyon.Service) halcyon.Service {
		return func(req *halcyon.Request) (resp *halcyon.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					var perr error
					switch v := r.(type) {
					case error:
						perr = v
					default:
						perr = fmt.Errorf("%v", v)
					}

					if config.Logger != nil {
						stack := make([]byte, config.StackSize)
						n := runtime.Stack(stack, config.StackAll)
						config.Logger.Errorf("panic recovered serving %s %s: %v\n%s", req.Method, req.Path, perr, stack[:n])
					}

					resp = halcyon.ErrorResponse(perr, 500)
					err = nil
				}
			}()
			return next(req)
		}
	}
}
