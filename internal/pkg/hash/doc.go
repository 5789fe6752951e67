// Package hash provides keyed digests for short-lived secrets.
//
// One-time codes are stored as HMAC-SHA256 digests: the digest is
// deterministic, so the store can still look a code up by equality, while the
// plain code never rests in the database.
package hash
