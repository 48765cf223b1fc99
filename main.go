package main

import "sdkbench/cmd"

func main() {
	cmd.Execute()
}
