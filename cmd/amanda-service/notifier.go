// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/lib/schema"
	"github.com/amanda-project/amanda/messaging"
)

// approvalNotifier posts resolution requests to the guild's approval
// channel as plain text.
type approvalNotifier struct {
	client messaging.Client
}

func (n *approvalNotifier) PostApprovalRequest(ctx context.Context, guild ref.GuildID,
	channelID ref.ChannelID, thread ref.ThreadID, entry schema.PendingApproval) error {

	channel, err := n.client.Channel(ctx, channelID)
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("Solicitação de aprovação\n")
	fmt.Fprintf(&b, "Tópico: %s (id %s)\n", entry.ThreadName, thread)
	fmt.Fprintf(&b, "Canal de origem: %s\n", entry.SourceChannelName)
	fmt.Fprintf(&b, "Solicitante: %s\n", entry.ResolvedByName)
	fmt.Fprintf(&b, "Classificação: %s / %s", entry.Org, entry.Category)
	return channel.SendMessage(ctx, b.String())
}
