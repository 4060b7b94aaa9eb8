package main

import "github.com/MeKo-Tech/globetex/internal/cmd"

func main() {
	cmd.Execute()
}
