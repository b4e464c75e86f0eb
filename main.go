package main

import (
	"github.com/sydscene/sydscene/cmd"
)

func main() {
	cmd.Execute()
}
