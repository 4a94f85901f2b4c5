package main

import "github.com/LegacyCodeHQ/includesense/cmd"

func main() {
	cmd.Execute()
}
