package main

import "github.com/aaronromeo/mailsweep/internal/cli"

// version is overridden with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
