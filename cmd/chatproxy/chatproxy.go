// Package chatproxycmder
package chatproxycmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/chatproxy/cmd/chatproxy/chat"
	configcmder "github.com/papercomputeco/chatproxy/cmd/chatproxy/config"
	servecmder "github.com/papercomputeco/chatproxy/cmd/chatproxy/serve"
	versioncmder "github.com/papercomputeco/chatproxy/cmd/version"
)

const chatproxyLongDesc string = `chatproxy forwards browser chat requests to an AI service
without exposing its API key.

Run the proxy and talk to it using:
  chatproxy serve      Run the proxy server
  chatproxy chat       Chat through a running proxy
  chatproxy config     Manage persistent configuration`

const chatproxyShortDesc string = "chatproxy - AI chat proxy"

func NewChatproxyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chatproxy",
		Short:        chatproxyShortDesc,
		Long:         chatproxyLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .chatproxy/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
