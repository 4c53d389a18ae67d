package main

import "regvm/cmd"

func main() {
	cmd.Execute()
}
