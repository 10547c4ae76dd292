// Package version reports the build version of the binary embedding coreapi.
//
// Values are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/coreapi/version.Version=1.4.0"
//
// Unset values fall back to the module's VCS build settings.
package version
