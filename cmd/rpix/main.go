package main

import (
	"os"

	"github.com/kk-code-lab/rpix/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := cli.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
