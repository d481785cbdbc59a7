package main

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/swift-nav/libsettings/pkg/settings"
	"github.com/swift-nav/libsettings/pkg/transport"
)

// Version information (set by ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	flagAddr     string
	flagSerial   string
	flagBaud     int
	flagSenderID uint16
	flagTimeout  time.Duration
	flagRetries  int
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "settingsctl",
	Short: "Control settings on an SBP settings bus",
	Long: `settingsctl connects to an SBP settings bus and acts as a settings
controller: it can read and write individual settings and enumerate
everything the settings daemon knows about.

Connect over TCP with --addr host:port, or to a serial device with
--serial /dev/ttyUSB0.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("settingsctl %s (built %s)\n", Version, BuildTime)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAddr, "addr", "", "TCP address of the settings bus (host:port)")
	pf.StringVar(&flagSerial, "serial", "", "serial device of the settings bus")
	pf.IntVar(&flagBaud, "baud", 115200, "serial baud rate")
	pf.Uint16Var(&flagSenderID, "sender-id", 0x77, "SBP sender ID of this controller")
	pf.DurationVar(&flagTimeout, "timeout", settings.DefaultTimeout, "per-try reply timeout")
	pf.IntVar(&flagRetries, "retries", settings.DefaultRetries, "send attempts per request")
	pf.BoolVar(&flagVerbose, "verbose", false, "set the log level to debug (only warnings and errors are logged; there are no per-message traces)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
}

func logger() hclog.Logger {
	level := hclog.Warn
	if flagVerbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "settingsctl",
		Level: level,
	})
}

// connect opens the transport selected by the flags and builds a
// settings client on it.
func connect() (*settings.Client, io.Closer, error) {
	log := logger()

	var conn *transport.Conn
	switch {
	case flagAddr != "":
		var err error
		conn, err = transport.Dial(flagAddr, transport.WithLogger(log.Named("transport")))
		if err != nil {
			return nil, nil, err
		}
	case flagSerial != "":
		port, err := transport.OpenSerial(flagSerial, flagBaud)
		if err != nil {
			return nil, nil, err
		}
		conn = transport.New(port, transport.WithLogger(log.Named("transport")))
	default:
		return nil, nil, fmt.Errorf("one of --addr or --serial is required")
	}

	client := settings.New(conn, flagSenderID,
		settings.WithLogger(log),
		settings.WithTimeout(flagTimeout),
		settings.WithRetries(flagRetries),
	)
	return client, conn, nil
}
