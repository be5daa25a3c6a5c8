package domain

import "strings"

// SanitizeUserID normalizes a raw messaging address into an identifier-safe
// history partition key. Every non-alphanumeric byte becomes an underscore,
// so "+1555@s.whatsapp.net" maps to "_1555_s_whatsapp_net". The same mapping
// must be applied on history reads and writes.
func SanitizeUserID(addr string) string {
	var b strings.Builder
	b.Grow(len(addr))
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// NormalizeRecipient strips the provider domain suffix from a messaging
// address, e.g. "+1555@s.whatsapp.net" becomes "+1555".
func NormalizeRecipient(addr string) string {
	if i := strings.IndexByte(addr, '@'); i >= 0 {
		return addr[:i]
	}
	return addr
}
