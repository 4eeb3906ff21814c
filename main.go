package main

import "octopus-price-alerts/internal/cli"

func main() {
	cli.Execute()
}
