package main

import "github.com/adamgarcia4/goLearning/turnsync/cmd"

func main() {
	cmd.Execute()
}
