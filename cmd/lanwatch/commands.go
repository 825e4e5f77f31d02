package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch"
)

// Command flags
var (
	searchRange   []string
	watchInterval time.Duration
	watchRescan   bool
)

func init() {
	for _, c := range []*cobra.Command{searchMACCmd, searchVendorCmd} {
		c.Flags().StringSliceVar(&searchRange, "range", nil, "Only consider these addresses")
	}
	searchCmd.AddCommand(searchIPCmd, searchMACCmd, searchVendorCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "Connection check interval")
	watchCmd.Flags().BoolVar(&watchRescan, "rescan", false, "Discover hosts after every connect")
}

// addrsArg maps no arguments to the whole subnet.
func addrsArg(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	return args
}

func withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *lanwatch.Engine) error) error {
	e, err := newEngine(cmd, 0)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, e)
}

// spin shows a spinner on the table format while fn runs.
func spin(text string, fn func() error) error {
	if outputFormat != "table" {
		return fn()
	}
	spinner, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	if err != nil {
		return fn()
	}
	err = fn()
	_ = spinner.Stop()
	return err
}

var discoverCmd = &cobra.Command{
	Use:   "discover [ip...]",
	Short: "Discover hosts on the network",
	Long: `Ping the given addresses, or every address of the active connection's
subnet, and resolve the hosts that answer.`,
	Example: `  # Whole subnet
  lanwatch discover

  # Two addresses, JSON output
  lanwatch discover 192.168.1.1 192.168.1.20 -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *lanwatch.Engine) error {
			var hosts []lanwatch.Host
			err := spin("Discovering hosts", func() (err error) {
				hosts, err = e.Discover(ctx, addrsArg(args))
				return err
			})
			if err != nil {
				return err
			}
			return renderHosts(hosts)
		})
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping [ip...]",
	Short: "Ping addresses without resolving them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *lanwatch.Engine) error {
			var res *lanwatch.PingResult
			err := spin("Pinging", func() (err error) {
				res, err = e.Ping(ctx, addrsArg(args))
				return err
			})
			if err != nil {
				return err
			}
			return renderPing(res)
		})
	},
}

var arpCmd = &cobra.Command{
	Use:   "arp [ip...]",
	Short: "Resolve addresses through ARP without pinging them first",
	Long: `Resolve addresses to MAC addresses. The system ARP table only knows hosts
that recently exchanged traffic with this machine, so this is most useful
right after a ping.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *lanwatch.Engine) error {
			var res *lanwatch.Result
			err := spin("Resolving", func() (err error) {
				res, err = e.ARP(ctx, addrsArg(args))
				return err
			})
			if err != nil {
				return err
			}
			return renderResult(res)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search discovered hosts",
}

var searchIPCmd = &cobra.Command{
	Use:   "ip <ip>...",
	Short: "Report which addresses are on the network",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *lanwatch.Engine) error {
			var res *lanwatch.Result
			err := spin("Searching", func() (err error) {
				res, err = e.SearchByIP(ctx, args)
				return err
			})
			if err != nil {
				return err
			}
			return renderResult(res)
		})
	},
}

var searchMACCmd = &cobra.Command{
	Use:   "mac <fragment>...",
	Short: "Find hosts whose MAC contains any fragment",
	Example: `  # All hosts with an Apple prefix
  lanwatch search mac e0:ac:cb 00:03:93`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *lanwatch.Engine) error {
			var res *lanwatch.Result
			err := spin("Searching", func() (err error) {
				res, err = e.SearchByMAC(ctx, args, searchRange)
				return err
			})
			if err != nil {
				return err
			}
			return renderResult(res)
		})
	},
}

var searchVendorCmd = &cobra.Command{
	Use:   "vendor <name>",
	Short: "Find hosts by vendor (case-insensitive, exact)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *lanwatch.Engine) error {
			var hosts []lanwatch.Host
			err := spin("Searching", func() (err error) {
				hosts, err = e.SearchByVendor(ctx, args[0], searchRange)
				return err
			})
			if err != nil {
				return err
			}
			return renderHosts(hosts)
		})
	},
}

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List network interfaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		ifs, err := lanwatch.ListInterfaces()
		if err != nil {
			return err
		}
		return renderInterfaces(ifs)
	},
}

var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Show the connection lanwatch would probe",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cmd, 0)
		if err != nil {
			return err
		}
		defer e.Close()
		return renderDevice(e.Device())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report connection changes until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watchInterval <= 0 {
			return fmt.Errorf("--interval must be positive")
		}
		e, err := newEngine(cmd, watchInterval)
		if err != nil {
			return err
		}
		defer e.Close()

		rescan := make(chan struct{}, 1)
		e.OnConnect(func(c lanwatch.Connection) {
			pterm.Success.Printfln("Connected: %s %s (%s)", c.Name, c.CIDR, c.MAC)
			select {
			case rescan <- struct{}{}:
			default:
			}
		})
		e.OnDisconnect(func() {
			pterm.Warning.Println("Disconnected")
		})

		if c := e.Connection(); c != nil {
			pterm.Info.Printfln("Watching %s %s every %s", c.Name, c.CIDR, watchInterval)
			rescan <- struct{}{}
		} else {
			pterm.Info.Printfln("Waiting for a connection, checking every %s", watchInterval)
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-rescan:
				if !watchRescan {
					continue
				}
				e.InvalidateCache()
				hosts, err := e.Discover(ctx, nil)
				if err != nil {
					logger.Warn("rescan failed", zap.Error(err))
					continue
				}
				if err := renderHosts(hosts); err != nil {
					return err
				}
			}
		}
	},
}
