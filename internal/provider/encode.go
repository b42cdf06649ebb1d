package provider

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// buildRawMessage assembles an RFC-822-ish plain-text message. Reply
// threading headers are added when the source message ID is known.
func buildRawMessage(req DraftRequest) string {
	lines := []string{
		"To: " + req.To,
		"Subject: " + req.Subject,
	}
	if req.MessageID != "" {
		lines = append(lines,
			"References: "+req.MessageID,
			"In-Reply-To: "+req.MessageID,
		)
	}
	lines = append(lines,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: 7bit",
		"",
		req.Content,
	)
	return strings.Join(lines, "\r\n")
}

// encodeRaw base64url-encodes a raw message without padding. Encoding
// must survive arbitrary content: a message that is valid UTF-8 passes
// through untouched; invalid byte sequences are scrubbed; if scrubbing
// leaves nothing of a non-empty message, every rune is rewritten as a
// bracketed hex placeholder instead. It never fails.
func encodeRaw(msg string) string {
	if utf8.ValidString(msg) {
		return base64.RawURLEncoding.EncodeToString([]byte(msg))
	}

	cleaned := strings.ToValidUTF8(msg, "")
	if cleaned == "" && msg != "" {
		cleaned = escapeNonASCII(msg)
	}
	return base64.RawURLEncoding.EncodeToString([]byte(cleaned))
}

// escapeNonASCII rewrites every non-ASCII rune as its uppercase-hex
// code point wrapped in brackets, e.g. "日" becomes "[65E5]".
func escapeNonASCII(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 0x80 {
			sb.WriteRune(r)
			continue
		}
		fmt.Fprintf(&sb, "[%X]", r)
	}
	return sb.String()
}
