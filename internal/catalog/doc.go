// Package catalog caches the dry-cleaner directory for the UI.
//
// The background poller in package app refreshes the cleaner list and the
// pricing configuration; the services screen fills in per-cleaner service
// listings on demand. Readers get defensive copies through Snapshot, so the
// poller goroutine and the UI loop never share slices or maps.
//
// When a refresh fails the previous data is kept and the error is recorded;
// IsOffline reports two or more consecutive failures.
package catalog
