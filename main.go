package main

import "github.com/jsphweid/midiline/cmd"

func main() {
	cmd.Execute()
}
