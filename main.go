package main

import "github.com/RyanBlaney/phase-pitch/cmd"

func main() {
	cmd.Execute()
}
