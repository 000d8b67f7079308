// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/messaging"
)

// ChannelDeliverer delivers run results through the chat platform.
type ChannelDeliverer struct {
	Client messaging.Client
}

var _ Deliverer = ChannelDeliverer{}

func (d ChannelDeliverer) SendText(ctx context.Context, channelID ref.ChannelID, text string) error {
	channel, err := d.Client.Channel(ctx, channelID)
	if err != nil {
		return err
	}
	return channel.SendMessage(ctx, text)
}

func (d ChannelDeliverer) SendBundle(ctx context.Context, channelID ref.ChannelID, path string) error {
	channel, err := d.Client.Channel(ctx, channelID)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer file.Close()
	return channel.SendFile(ctx, filepath.Base(path), file)
}
