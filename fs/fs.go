package appfs

import "embed"

// FS holds the assets compiled into the binaries.
//
//go:embed migrations/*.sql templates/email/* report/*.yaml
var FS embed.FS
