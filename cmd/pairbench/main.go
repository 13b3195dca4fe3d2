// cmd/pairbench/main.go
package main

import (
	cmd "github.com/pairbench/pairbench/internal/commands"
)

// main starts the pairbench CLI application by delegating to the
// cobra root command defined in the pairbench package. It does not
// take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
