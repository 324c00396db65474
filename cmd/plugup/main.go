package main

import (
	"errors"
	"os"

	cmd "github.com/MrSnakeDoc/plugup/internal"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/middleware"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, middleware.ErrLogged) {
			logger.LogError("%s", err.Error())
		}
		os.Exit(1)
	}
}
