// Package setup checks the host before a publish run and resolves default locations.
//
// This package is essentially a collection of scripts and constants, and is therefore the only package that is
// allowed to call a global logger.
package setup
