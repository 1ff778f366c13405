package main

import (
	"github.com/luma/tsquery/cmd"
)

func main() {
	cmd.Execute()
}
