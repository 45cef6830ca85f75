package main

import (
	"github.com/storelens/storelens/internal/cmd"
)

func main() {
	cmd.Execute()
}
