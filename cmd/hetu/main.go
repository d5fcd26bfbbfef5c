package main

import (
	"os"

	"github.com/funvibe/hetu/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
