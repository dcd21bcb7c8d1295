// Package google groups connectors for Google APIs.
//
// The drive subpackage is the one in use: it reads the shared lore folder
// with an API key, so none of the OAuth machinery Google's user-scoped
// APIs need appears here.
package google
