package main

import (
	"TimedIn/internal/repository"
	"TimedIn/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
