// Package buildinfo reports the version of the dynbind binary.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/dynbind-go/internal/infra/buildinfo.Version=v1.0.0"
//
// When Commit is not injected it falls back to the VCS revision recorded
// by the Go toolchain.
package buildinfo
