package assets

import "embed"

//go:embed ideas.json
var IdeasFS embed.FS

// IdeasPath is the catalog file name inside IdeasFS.
const IdeasPath = "ideas.json"
