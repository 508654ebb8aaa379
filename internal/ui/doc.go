// Package ui implements presser's Bubble Tea interface.
//
// # Views
//
//	Cleaners   directory list; enter attaches the cleaner to the order and
//	           loads its services
//	Services   per-item taps (+ - x w s 1-9) go straight to the order store;
//	           [ and ] switch category and are journaled
//	Schedule   pickup/delivery text inputs saved with SaveScheduling
//	Address    home/office text inputs, validated, saved with SaveAddress
//	Checkout   priced summary; p creates the booking and opens the payment
//	           confirmation modal
//	Receipt    confirmation code and QR, shown once payment completes
//	Activity   interaction journal plus the tail of the log file
//
// # Bulk saves
//
// The services view keeps a local selection that mirrors the store after
// each tap. Every tap bumps a sequence number and schedules a saveOrderMsg
// with tea.Tick; only the message carrying the latest sequence calls
// SaveOrderData. That save usually arrives inside the store's protection
// window and is rejected, which is the point: the fine-grained edit has
// already landed and the bulk echo must not overwrite it. Completing a
// payment or clearing the order bumps the sequence so a pending save cannot
// resurrect the order.
//
// # Refresh
//
// A one-second tick re-reads the catalog and order snapshots; the store
// mutations made by key handlers refresh the order snapshot immediately.
// API calls (services, booking, payment) run as tea.Cmds with a timeout.
//
// # Themes
//
// Nightfox, Kanagawa and Slate are cycled with T; the choice is persisted
// through the prefs package together with the address type.
package ui
