// Package version provides build and version information for Inkdrift.
package version

// Version is the current release version of Inkdrift.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/inkdrift/inkdrift/internal/version.Version=x.y.z"
var Version = "1.0.0"
