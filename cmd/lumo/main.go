package main

import "github.com/MeKo-Tech/lumo/cmd/lumo/cmd"

func main() {
	cmd.Execute()
}
