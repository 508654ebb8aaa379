// Package app is presser's composition root.
//
// Run loads the config, opens the zerolog log file, builds the API client,
// and creates the two stores the UI reads from:
//
//   - catalog.Store holds the cleaner directory and pricing, refreshed by the
//     background poller
//   - order.Store holds the in-progress order, its protection guard, the
//     interaction log and the saved addresses/schedule
//
// It then hands both to ui.Run, which blocks until the user quits.
//
//	Run()
//	 ├─> config.Load()
//	 ├─> logging.Open()
//	 ├─> api.NewClient()
//	 ├─> order.NewStore(cfg.OrderOptions())
//	 ├─> refresh()          first directory fetch
//	 ├─> StartPoller()      background refresh with backoff
//	 └─> ui.Run()           blocks
//
// # Polling
//
// The poller waits PollInterval between refreshes. After a failed cleaner
// fetch the wait doubles per consecutive failure, capped at five minutes,
// and the catalog snapshot reports offline after two failures. A pricing
// failure alone keeps the last pricing and is only logged.
//
// # Password reset
//
// ResetPassword is a plain terminal flow (no TUI) that requests a one-time
// code, verifies it and sets a new password. cmd/presser runs it for
// -reset-password.
package app
