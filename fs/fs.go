package appfs

import "embed"

// FS holds the SQL migrations and the static assets shipped with the binaries.
//
//go:embed migrations assets assets/templates/email/_*
var FS embed.FS
