/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import (
	"github.com/josephgoksu/cascade/cmd"
	"github.com/josephgoksu/cascade/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
