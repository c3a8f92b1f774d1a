package main

import "github.com/strrl/intake-intel/internal/cmd"

func main() {
	cmd.Execute()
}
