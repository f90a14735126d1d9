package main

import "lifedrop/cmd"

func main() {
	cmd.Execute()
}
