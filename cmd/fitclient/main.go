// Command fitclient is a command-line client for the fitness studio backend.
package main

import "github.com/fitness-app/fitclient/cmd/fitclient/cmd"

func main() {
	cmd.Execute()
}
