package web

import "sync"

// buildInfo is injected at startup from the binary's ldflags and read by
// the status endpoint.
type buildInfo struct {
	version string
	commit  string
	built   string
}

var (
	buildMu sync.RWMutex
	build   = buildInfo{version: "dev", commit: "unknown", built: "unknown"}
)

// SetVersionInfo records the build identity exposed by /api/status
func SetVersionInfo(versionStr, commit, buildTime string) {
	buildMu.Lock()
	defer buildMu.Unlock()
	build = buildInfo{version: versionStr, commit: commit, built: buildTime}
}

// GetVersionInfo returns the recorded build identity
func GetVersionInfo() (string, string, string) {
	buildMu.RLock()
	defer buildMu.RUnlock()
	return build.version, build.commit, build.built
}
