package main

import "github.com/gridstats/agent/cmd"

func main() {
	cmd.Execute()
}
