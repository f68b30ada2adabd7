package domain

import "strings"

// Hosts that ignore dots and plus-tags in the local part. Aliases of one
// mailbox must normalize to the same key or the per-identity lock, block
// list and abuse counters are trivially bypassed.
var dotInsensitiveHosts = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// NormalizeIdentity canonicalizes an email address into the stable key used
// for deduplication, locking, blocking and abuse counting.
func NormalizeIdentity(identity string) string {
	s := strings.ToLower(strings.TrimSpace(identity))
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	local, host := s[:at], s[at+1:]
	if plus := strings.Index(local, "+"); plus >= 0 {
		local = local[:plus]
	}
	if dotInsensitiveHosts[host] {
		local = strings.ReplaceAll(local, ".", "")
	}
	return local + "@" + host
}
