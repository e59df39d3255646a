package main

import "github.com/ridhamz/AppointmentEase/cmd"

func main() {
	cmd.Execute()
}
