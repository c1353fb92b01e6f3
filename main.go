package main

import (
	"fmt"

	"soundamp/cli"
)

// Application Entry Point
func main() {
	if err := cli.Run(); err != nil {
		fmt.Println(err)
	}
}
