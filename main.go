package main

import "github.com/frahmantamala/guard-deployment/cmd"

func main() {
	cmd.Execute()
}
