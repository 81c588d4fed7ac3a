// Command chat sends one prompt to an OpenAI-compatible chat-completions API.
package main

import (
	"os"

	"github.com/hpn/hpn-g-chat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
