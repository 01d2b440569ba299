package main

import "github.com/crystaldolphin/dolphinchat/cmd"

func main() {
	cmd.Execute()
}
