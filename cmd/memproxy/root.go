package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/arlabs/memnet/proxy"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "memproxy <port>",
	Short: "Run a caching HTTP/1.0 forward proxy",
	Long: `memproxy listens on the given TCP port and forwards GET requests to
their origin servers, caching responses small enough to replay on repeat
requests. Interrupt with SIGINT to drain and exit cleanly.

Example:
  memproxy 3128
  memproxy 3128 --verbose`,
	Version:       "0.1.0",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProxy(args)
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Trace request traffic")
}

func runProxy(args []string) error {
	port, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", args[0], err)
	}

	opts := []proxy.Option{}
	if verbose {
		opts = append(opts, proxy.WithVerbose())
	}

	srv, err := proxy.New(port, opts...)
	if err != nil {
		return err
	}

	// A vanished client must only end its own connection.
	signal.Ignore(unix.SIGPIPE)

	// The handler side only flips the drain flag; all cleanup happens
	// on the accept loop's way out.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, unix.SIGINT)
	go func() {
		<-interrupt
		srv.Shutdown()
	}()

	return srv.ListenAndServe()
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
