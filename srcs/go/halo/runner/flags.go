package runner

import (
	"errors"
	"flag"
	"time"

	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/plan/hostfile"
	"github.com/lsds/halo/srcs/go/utils"
)

var errMissingProgramName = errors.New("missing program name")

// FlagSet is the command line of halo-run:
//
//	halo-run [flags] <prog> [args...]
type FlagSet struct {
	ClusterSize int
	HostList    plan.HostList
	hostFile    string
	PortRange   plan.PortRange
	Self        string

	User   string
	Remote bool

	Timeout    time.Duration
	VerboseLog bool
	LogDir     string
	Quiet      bool

	Prog string
	Args []string
}

func (f *FlagSet) Register(fs *flag.FlagSet) {
	f.HostList = plan.DefaultHostList
	f.PortRange = plan.DefaultPortRange

	fs.IntVar(&f.ClusterSize, "np", 2, "number of peers")
	fs.Var(&f.HostList, "H", "comma separated <internal IP>:<slots>[:<public addr>]")
	fs.StringVar(&f.hostFile, "hostfile", "", "MPI style hostfile, overrides -H")
	fs.Var(&f.PortRange, "port-range", "ports given to the peers of each host")
	fs.StringVar(&f.Self, "self", "127.0.0.1", "internal IPv4 of this host")

	fs.StringVar(&f.User, "u", "", "ssh user")
	fs.BoolVar(&f.Remote, "remote", false, "start every peer over ssh")

	fs.DurationVar(&f.Timeout, "timeout", 0, "kill the job after this long, 0 for never")
	fs.BoolVar(&f.VerboseLog, "v", true, "echo worker output")
	fs.StringVar(&f.LogDir, "logdir", "", "directory for per-worker logs")
	fs.BoolVar(&f.Quiet, "q", false, "don't print arguments and environment")
}

// Parse reads args, whose first element is the program name of halo-run.
func (f *FlagSet) Parse(args []string) error {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	f.Register(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if f.hostFile != "" {
		hl, err := hostfile.ParseFile(f.hostFile)
		if err != nil {
			return err
		}
		f.HostList = hl
	}
	if fs.NArg() == 0 {
		return errMissingProgramName
	}
	f.Prog, f.Args = fs.Arg(0), fs.Args()[1:]
	return nil
}

// Init parses args or exits.
func Init(f *FlagSet, args []string) {
	if err := f.Parse(args); err != nil {
		utils.ExitErr(err)
	}
	if !f.Quiet {
		utils.LogArgs()
		utils.LogHaloEnv()
	}
}
