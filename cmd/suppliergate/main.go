package main

import "github.com/example/supplier-gate/cmd"

func main() {
	cmd.Execute()
}
