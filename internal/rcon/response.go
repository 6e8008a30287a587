package rcon

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// NormalizeResponse turns a raw RCON body into the text the status parser
// expects. Servers on Windows hosts send player names in the ANSI code page, so
// a body that is not valid UTF-8 is decoded as Windows-1252.
func NormalizeResponse(body string) string {
	if !utf8.ValidString(body) {
		if decoded, err := charmap.Windows1252.NewDecoder().String(body); err == nil {
			body = decoded
		}
	}
	body = strings.ReplaceAll(body, "\x00", "")
	return strings.ReplaceAll(body, "\r\n", "\n")
}
