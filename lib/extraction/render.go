// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/messaging"
)

// Context is the header block of a transcript.
type Context struct {
	Origin   string
	Name     string
	Org      string
	Category string
	ID       ref.ThreadID
}

// imageExtensions mark attachment URLs rendered with the IMAGEM tag.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".webp": true, ".bmp": true,
}

// Transcript renders a thread into the fixed plain-text export format:
// a contexto header, then one line per message with the author,
// newline-flattened content, and tagged attachment URLs. The format is
// a persisted contract consumed by downstream tooling; field names
// stay in Portuguese.
func Transcript(context Context, messages []messaging.Message) string {
	var b strings.Builder
	b.WriteString("contexto:\n")
	fmt.Fprintf(&b, "  origem: %s\n", context.Origin)
	fmt.Fprintf(&b, "  nome: %s\n", context.Name)
	fmt.Fprintf(&b, "  orgao: %s\n", context.Org)
	fmt.Fprintf(&b, "  categoria: %s\n", context.Category)
	fmt.Fprintf(&b, "  id: %s", context.ID)

	if len(messages) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\nmensagens[%d]{autor,mensagem}:", len(messages))
	for _, message := range messages {
		text := strings.ReplaceAll(message.Content, "\n", " ")
		parts := make([]string, 0, 1+len(message.Attachments))
		if text != "" {
			parts = append(parts, text)
		}
		for _, attachment := range message.Attachments {
			parts = append(parts, fmt.Sprintf("[%s: %s]", attachmentTag(attachment), attachment))
		}
		fmt.Fprintf(&b, "\n  %s, %s", message.AuthorName, strings.Join(parts, " "))
	}
	return b.String()
}

// attachmentTag classifies an attachment URL by the extension of its
// path component, so query strings do not confuse the match.
func attachmentTag(rawURL string) string {
	target := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		target = parsed.Path
	}
	if imageExtensions[strings.ToLower(path.Ext(target))] {
		return "IMAGEM"
	}
	return "ARQUIVO"
}
