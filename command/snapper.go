package command

import (
	"os"

	"code.cloudfoundry.org/lager"
)

var (
	sink   = lager.NewReconfigurableSink(lager.NewWriterSink(os.Stderr, lager.DEBUG), lager.INFO)
	logger = newLogger()
)

func newLogger() (l lager.Logger) {
	l = lager.NewLogger("snapper")
	l.RegisterSink(sink)

	return
}

// Snapper is the root of the command line: global options plus one field
// per subcommand.
//
var Snapper struct {
	ConfigFile string            `long:"config"    short:"c" description:"hcl file with snapper's configuration"`
	Variables  map[string]string `long:"var"       short:"v" description:"variables to interpolate into the configuration file"`
	StorePath  string            `long:"store"               description:"directory of the content store (overrides the configuration)"`
	InMemory   bool              `long:"in-memory"           description:"keep the content store in memory only"`
	Verbose    bool              `long:"verbose"             description:"log debug messages"`

	Ingest    ingestCommand    `command:"ingest"    description:"validates snapshot archives and stores their members"`
	List      listCommand      `command:"list"      description:"lists the stored snapshot archives"`
	Show      showCommand      `command:"show"      description:"shows the members of a stored archive"`
	Compare   compareCommand   `command:"compare"   description:"compares the members of two stored archives"`
	Diff      diffCommand      `command:"diff"      description:"shows the line diff of a file between two stored archives"`
	Delete    deleteCommand    `command:"delete"    description:"removes a stored archive"`
	Collector collectorCommand `command:"collector" description:"prints the command that runs the snapshot collector"`
}
