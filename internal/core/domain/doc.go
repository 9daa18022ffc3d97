// Package domain holds the types deepdocs reasons about: documents on
// disk, the chunks their text is split into, user collections and
// ranked search results, together with the settings that shape the
// pipeline and the sentinel errors shared by every layer.
//
// The package imports only the standard library. Services, ports and
// adapters all depend on it; it depends on none of them.
package domain
