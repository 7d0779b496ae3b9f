package model

import "time"

// VendorMemory is the learned mapping from a normalized vendor key to the
// category a client's users have confirmed for it. One row per
// (client, vendor key); rows are updated on every confirmation but never
// deleted.
type VendorMemory struct {
	LastSeen       time.Time
	VendorKey      string
	Category       string
	ClientID       int64
	Confidence     int
	TimesConfirmed int
}
