// Package alias resolves inbound recipient addresses to the base alias
// a user registered, ignoring subaddress tags.
package alias

import "strings"

// Address is a recipient address split into its routing-relevant parts.
// Tag is empty when the local-part carries no subaddress.
type Address struct {
	Base string
	Tag  string
}

// Parse splits addr of the form local[+tag]@domain. Everything after the
// first '+' in the local-part up to the '@' is the tag. An input without
// an '@' is treated as a bare local-part, never an error.
func Parse(addr string) Address {
	local := addr
	if at := strings.Index(addr, "@"); at >= 0 {
		local = addr[:at]
	}

	base, tag, _ := strings.Cut(local, "+")
	return Address{Base: base, Tag: tag}
}
