// Package assets embeds the static map files shared by client and server.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed all:levels
var assetFS embed.FS

// HangarPath is the pre-game lobby map inside FS.
const HangarPath = "levels/hangar.tmx"

// FS returns the embedded asset filesystem.
func FS() fs.FS {
	return assetFS
}
