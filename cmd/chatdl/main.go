package main

import (
	"github.com/buildbeaver/chatdl/cmd/chatdl/commands"
)

func main() {
	commands.Execute()
}
