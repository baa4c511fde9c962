package main

import (
	"os"

	"github.com/guilt/groupenc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
