package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"shopvoice/internal/config"
	"shopvoice/internal/ipc"
)

const usage = `usage: shopvoice-ctl <command> [arg]

commands:
  trigger             start listening
  stop                stop listening
  consent on|off      grant or revoke voice-tone analysis
  connectivity online|offline
  inject <file>       run a prerecorded utterance through the pipeline
  status              show daemon state
`

func main() {
	socket := cli.StringP("socket", "s", "", "Daemon socket path (overrides env)")
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		fmt.Print(usage)
		os.Exit(2)
	}

	path := config.Load().SocketPath
	if *socket != "" {
		path = *socket
	}

	msg := ipc.ControlMessage{Cmd: args[0]}
	if len(args) > 1 {
		msg.Arg = args[1]
	}

	reply, err := ipc.Send(path, msg)
	if err != nil {
		fmt.Println("shopvoice-daemon not running:", err)
		os.Exit(1)
	}
	if !reply.OK {
		fmt.Println("error:", reply.Text)
		os.Exit(1)
	}
	fmt.Println(reply.Text)
}
