// Package logger wraps zap with a global sugared logger that is carried in
// context.Context. Services name their logger once (WithName), attach session
// fields (WithKV) and then log through the package-level helpers, which always
// resolve the logger from the context.
package logger
