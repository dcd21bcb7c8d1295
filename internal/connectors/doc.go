// Package connectors holds remote-source clients for the lore pipeline.
// Each connector implements the driven RemoteStore port for one source;
// Google Drive is the source the portal syncs from.
package connectors
