// Package version reports build information for the binaries in this module.
package version
