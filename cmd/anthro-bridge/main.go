package main

import (
	"context"
	"fmt"
	"os"

	"github.com/adrycodes/anthro-bridge/cmd/anthro-bridge/commands"
)

func main() {
	if err := commands.Execute(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
