package main

import "fleet-relay/cmd"

func main() {
	cmd.Execute()
}
