package main

import (
	"fmt"
	"os"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/cmd/devclubctl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
