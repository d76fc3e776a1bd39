package main

import "github.com/edaexpress/fooddelivery/cmd"

func main() {
	cmd.Start()
}
