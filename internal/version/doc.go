// Package version holds the build metadata of redlight-sentinel.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
package version
