package views

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFiles embed.FS

// Static is the script and stylesheet tree served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
