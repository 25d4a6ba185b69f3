package main

import "github.com/zfogg/inkwell/internal/cmd"

func main() {
	cmd.Execute()
}
