//go:build !embed

package web

import "net/http"

// embeddedStaticFS reports no embedded assets in a default build; the
// server then serves the dashboard from frontend/dist on disk. Builds
// with -tags=embed compile the assets in instead.
func embeddedStaticFS() (http.FileSystem, error) {
	return nil, nil
}
