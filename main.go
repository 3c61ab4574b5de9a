package main

import (
	"os"

	"code.cloudfoundry.org/lager"
	"github.com/cirocosta/snapper/command"
	"github.com/jessevdk/go-flags"
)

func main() {
	logger := lager.NewLogger("snapper")
	logger.RegisterSink(lager.NewWriterSink(os.Stderr, lager.INFO))

	parser := flags.NewParser(&command.Snapper, flags.HelpFlag|flags.PassDoubleDash)
	parser.NamespaceDelimiter = "-"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Stdout.WriteString(flagsErr.Message + "\n")
			return
		}

		logger.Error("parsing", err)
		os.Exit(1)
	}
}
