// Package main is the entry point for the vkreplay trace replayer.
package main

import (
	"os"

	"firestige.xyz/vkreplay/cmd"
	_ "firestige.xyz/vkreplay/plugins"
)

func main() {
	os.Exit(cmd.Execute())
}
