//go:build embed

package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

//go:embed frontend/dist/*
var dashboardAssets embed.FS

// embeddedStaticFS exposes the compiled-in dashboard bundle
func embeddedStaticFS() (http.FileSystem, error) {
	sub, err := fs.Sub(dashboardAssets, "frontend/dist")
	if err != nil {
		return nil, fmt.Errorf("embedded dashboard assets: %w", err)
	}
	return http.FS(sub), nil
}
