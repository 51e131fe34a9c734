package main

import "github.com/diogo/hrdesk/internal/commands"

func main() {
	commands.Execute()
}
