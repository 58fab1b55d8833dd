// Package config defines the sentinel settings and provides helpers to load,
// validate and save them in YAML format.
//
// Phase and detection values are validated by the domain packages themselves,
// so a file that loads here is guaranteed to build a working session.
package config
