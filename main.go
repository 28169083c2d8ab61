package main

import "github.com/orinworks/canctl/cmd"

func main() {
	cmd.Execute()
}
