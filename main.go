package main

import "github.com/repoviz/repoviz/cmd"

func main() {
	cmd.Execute()
}
