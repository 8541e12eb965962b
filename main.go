package main

import "shadertune/cmd"

func main() {
	cmd.Execute()
}
