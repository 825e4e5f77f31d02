// Lanwatch discovers the devices on the local network.
//
// Usage:
//
//	lanwatch [command] [flags]
//
// See 'lanwatch --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lanwatch",
	Short: "Discover devices on the local network",
	Long: `Discover devices on the local IPv4 network.

lanwatch pings every address of this machine's subnet, resolves the hosts
that answer to MAC addresses through ARP and names them with their vendor
and reverse DNS entry. Results are cached between runs of the same process.`,
	Version:       lanwatch.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Global flags
var (
	configPath       string
	outputFormat     string
	logLevel         string
	timeout          int
	includeEndpoints bool
	interfaces       []string
	ouiDatabase      string
	noNames          bool
)

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ./lanwatch.yaml or ~/.config/lanwatch/lanwatch.yaml)")
	pf.StringVarP(&outputFormat, "format", "o", "table", "Output format (table, json, yaml)")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+LogLevelEnvVar)
	pf.IntVarP(&timeout, "timeout", "t", 0, "Per-probe timeout in seconds (1-60)")
	pf.BoolVar(&includeEndpoints, "include-endpoints", false, "Also probe the network and broadcast addresses")
	pf.StringSliceVarP(&interfaces, "interface", "i", nil, "Only consider these interfaces")
	pf.StringVar(&ouiDatabase, "oui-db", "", "Vendor database (IEEE oui.csv or klauspost/oui file)")
	pf.BoolVar(&noNames, "no-names", false, "Skip reverse DNS lookups")

	rootCmd.AddCommand(discoverCmd, pingCmd, arpCmd, searchCmd, interfacesCmd, connectionCmd, watchCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(lanwatch.VersionInfo())
	},
}
