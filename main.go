package main

import (
	"os"

	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/cli"
)

func main() {
	logger.SetFormatter(&logger.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logger.InfoLevel)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
