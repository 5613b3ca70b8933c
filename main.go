package main

import "github.com/stevehiehn/exercheck/cmd"

func main() {
	cmd.Execute()
}
