package main

import "github.com/penwyp/go-claude-predictor/commands"

func main() {
	commands.Execute()
}
