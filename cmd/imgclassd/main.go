package main

import (
	"os"

	"imgclassd/internal/cli"
)

func main() { os.Exit(cli.Main()) }
