// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters): the Discoverer walks the
// remote folder tree, the SyncRunner controls a chunked run
// end to end, and the Scheduler re-invokes sync runs on an
// interval.
package services
