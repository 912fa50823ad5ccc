package app

import (
	"flag"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/oleg578/csvstream/cmd/csvstream/app/options"
)

// Version is set at link time.
var Version = "dev"

// NewCSVStreamCommand builds the csvstream root command and its subcommands.
func NewCSVStreamCommand() *cobra.Command {
	var configFile string
	s := options.NewOptions()

	cmd := &cobra.Command{
		Use:   "csvstream",
		Short: "Stream delimiter-separated text",
		Long: `csvstream reads and writes delimiter-separated, quote-escaped records one row at a time.
Input is the file argument, or standard input when it is absent or "-".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&configFile, "config", "", "Path to a configuration file. By default csvstream.yaml is looked up in $HOME/.config/csvstream and the working directory.")
	s.AddFlags(fs, s)

	local := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(local)
	fs.AddGoFlagSet(local)

	cmd.AddCommand(
		newConvertCommand(s),
		newCheckCommand(s),
		newStatsCommand(s),
		newUniqCommand(s),
		newVersionCommand(),
	)
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of csvstream",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}

// loadOptions completes s, already holding the parsed flags, with the
// environment and the configuration file.
func loadOptions(cmd *cobra.Command, s *options.Options) (*options.Options, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := options.Load(s, cmd.Flags(), configFile); err != nil {
		return nil, err
	}
	return s, nil
}

// openInput returns the input named by args, or the command's stdin.
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, args[0], errors.Wrapf(err, "open input")
	}
	return f, args[0], nil
}
