package main

import "github.com/xlsxcalendar/xlsxcalendar/cmd"

func main() {
	cmd.Execute()
}
