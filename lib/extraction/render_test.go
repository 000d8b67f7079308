// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"testing"
	"time"

	"github.com/amanda-project/amanda/messaging"
)

func TestTranscriptFormat(t *testing.T) {
	context := Context{
		Origin:   "suporte-ti",
		Name:     "OK - impressora quebrada",
		Org:      "TI",
		Category: "Hardware",
		ID:       "111222333",
	}
	messages := []messaging.Message{
		{
			AuthorName: "ana",
			Content:    "a impressora parou\nde novo",
			CreatedAt:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			AuthorName:  "bruno",
			Content:     "segue a foto",
			Attachments: []string{"https://cdn.example.com/a/b/foto.PNG?ex=123"},
		},
		{
			AuthorName:  "ana",
			Attachments: []string{"https://cdn.example.com/a/b/relatorio.pdf"},
		},
	}

	want := "contexto:\n" +
		"  origem: suporte-ti\n" +
		"  nome: OK - impressora quebrada\n" +
		"  orgao: TI\n" +
		"  categoria: Hardware\n" +
		"  id: 111222333\n" +
		"mensagens[3]{autor,mensagem}:\n" +
		"  ana, a impressora parou de novo\n" +
		"  bruno, segue a foto [IMAGEM: https://cdn.example.com/a/b/foto.PNG?ex=123]\n" +
		"  ana, [ARQUIVO: https://cdn.example.com/a/b/relatorio.pdf]"

	if got := Transcript(context, messages); got != want {
		t.Errorf("Transcript mismatch:\ngot:\n%s\n\nwant:\n%s", got, want)
	}
}

func TestTranscriptWithoutMessages(t *testing.T) {
	got := Transcript(Context{Origin: "c", Name: "n", Org: "o", Category: "k", ID: "1"}, nil)
	want := "contexto:\n  origem: c\n  nome: n\n  orgao: o\n  categoria: k\n  id: 1"
	if got != want {
		t.Errorf("Transcript = %q, want %q", got, want)
	}
}

func TestAttachmentTag(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/x/foto.png", "IMAGEM"},
		{"https://cdn.example.com/x/foto.JPEG?width=80", "IMAGEM"},
		{"https://cdn.example.com/x/anim.webp", "IMAGEM"},
		{"https://cdn.example.com/x/doc.pdf", "ARQUIVO"},
		{"https://cdn.example.com/x/sem-extensao", "ARQUIVO"},
		// Extension in the query string must not count.
		{"https://cdn.example.com/x/doc.pdf?fake=.png", "ARQUIVO"},
	}
	for _, tt := range tests {
		if got := attachmentTag(tt.url); got != tt.want {
			t.Errorf("attachmentTag(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
