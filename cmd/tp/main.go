package main

import "github.com/mkhrrs89/TaskPoints/cmd/tp/root"

func main() {
	root.Execute()
}
