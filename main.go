package main

import "github.com/fakeyudi/focus/cmd"

func main() {
	cmd.Execute()
}
