// Package common holds helpers shared by the sentinel entry points.
//
// It detects the operator (hostname/username) recorded in session logs and
// guards against two sentinel processes fighting over the same camera.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
