package main

import "staybook/cmd"

func main() {
	cmd.Execute()
}
