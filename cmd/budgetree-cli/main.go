package main

import "budgetree/cmd/budgetree-cli/cmd"

func main() {
	cmd.Execute()
}
