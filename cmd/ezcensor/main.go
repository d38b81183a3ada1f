package main

import (
	"os"

	"github.com/ParryPee/EzCensor/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
