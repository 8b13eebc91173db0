// Package web embeds the minimal front end: a single page that logs
// in through the identity gateway and renders the caller's inbox via
// the read APIs.
package web

import _ "embed"

//go:embed index.html
var Index []byte
