package main

import "prism/cmd"

func main() {
	cmd.Execute()
}
