package main

import (
	"os"

	"lazy-tourist-be/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
