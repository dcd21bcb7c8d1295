// Package drive implements the remote lore store against the Google Drive
// REST API.
//
// Access is read-only, authenticated with an API key rather than OAuth: the
// lore folder is shared publicly and the sync pipeline never writes back.
// Clients are scoped to a single sync run and opened through the Factory,
// so the adaptive pacer and the API call budget start fresh each run:
//
//	factory, err := drive.NewFactory(drive.Config{APIKey: key})
//	store, err := factory.Open(ctx, runCfg)
//	defer store.Close()
//
// Every request flows through one path that enforces the budget, paces
// through the shared Pacer, retries transient failures a bounded number of
// times, and attaches a diagnostic kind at the point of failure. Throttle
// responses (429, or 403 with a rate or quota reason) stretch the pacer's
// delay; streaks of successes ease it back toward the floor.
package drive
