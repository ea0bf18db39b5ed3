package main

import "github.com/oshokin/proximity-alarm/cmd/proximity-alarm/cmd"

func main() {
	cmd.Execute()
}
