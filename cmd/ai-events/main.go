package main

import "github.com/pfrederiksen/ai-events/internal/cli"

func main() {
	cli.Execute()
}
