package main

import "github.com/sahilchouksey/career-guidance-api/cmd/careerctl/commands"

func main() {
	commands.Execute()
}
