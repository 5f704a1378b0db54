package main

import "github.com/Layr-Labs/txguard/cmd"

func main() {
	cmd.Execute()
}
