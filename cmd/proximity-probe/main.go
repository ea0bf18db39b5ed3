package main

import "github.com/oshokin/proximity-alarm/cmd/proximity-probe/cmd"

func main() {
	cmd.Execute()
}
