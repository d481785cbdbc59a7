package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/swift-nav/libsettings/pkg/types"
	"github.com/swift-nav/libsettings/pkg/wire"
)

// maxStringValue bounds string reads from the command line; payloads
// cannot carry more anyway.
const maxStringValue = wire.MaxSettingLen

func knownType(t string) bool {
	switch t {
	case "int", "float", "string", "bool":
		return true
	}
	return false
}

var readType string

var readCmd = &cobra.Command{
	Use:   "read <section> <name>",
	Short: "Read one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !knownType(readType) {
			return fmt.Errorf("unknown type %q (int, float, string, bool)", readType)
		}

		client, closer, err := connect()
		if err != nil {
			return err
		}
		defer closer.Close()
		defer client.Close()

		section, name := args[0], args[1]

		switch readType {
		case "int":
			v, err := client.ReadInt(section, name)
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "float":
			v, err := client.ReadFloat(section, name)
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "bool":
			v, err := client.ReadBool(section, name)
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "string":
			v, err := client.ReadString(section, name, maxStringValue)
			if err != nil {
				return err
			}
			fmt.Println(v)
		default:
			return fmt.Errorf("unknown type %q (int, float, string, bool)", readType)
		}
		return nil
	},
}

var writeType string

var writeCmd = &cobra.Command{
	Use:   "write <section> <name> <value>",
	Short: "Write one setting",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !knownType(writeType) {
			return fmt.Errorf("unknown type %q (int, float, string, bool)", writeType)
		}

		client, closer, err := connect()
		if err != nil {
			return err
		}
		defer closer.Close()
		defer client.Close()

		section, name, value := args[0], args[1], args[2]

		var res wire.WriteResult
		switch writeType {
		case "int":
			v, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return fmt.Errorf("parsing %q as int: %w", value, err)
			}
			res, err = client.WriteInt(section, name, int32(v))
			if err != nil {
				return err
			}
		case "float":
			v, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return fmt.Errorf("parsing %q as float: %w", value, err)
			}
			res, err = client.WriteFloat(section, name, float32(v))
			if err != nil {
				return err
			}
		case "bool":
			v, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("parsing %q as bool: %w", value, err)
			}
			res, err = client.WriteBool(section, name, v)
			if err != nil {
				return err
			}
		case "string":
			res, err = client.WriteString(section, name, value)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown type %q (int, float, string, bool)", writeType)
		}

		if res != wire.WriteOK {
			return fmt.Errorf("write rejected: %s", res)
		}
		fmt.Println("ok")
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Enumerate every setting the daemon knows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := connect()
		if err != nil {
			return err
		}
		defer closer.Close()
		defer client.Close()

		all, err := client.ReadAll()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SECTION\tNAME\tVALUE\tTYPE")
		for _, s := range all {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Section, s.Name, s.Value, s.Type)
		}
		return tw.Flush()
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <section> <name>",
	Short: "Follow a string-rendered setting until interrupted",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := connect()
		if err != nil {
			return err
		}
		defer closer.Close()
		defer client.Close()

		section, name := args[0], args[1]
		storage := make([]byte, maxStringValue)

		err = client.AddWatch(section, name, storage, types.String, func() wire.WriteResult {
			fmt.Printf("%s.%s = %s\n", section, name, types.DecodeString(storage))
			return wire.WriteOK
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s.%s = %s\n", section, name, types.DecodeString(storage))

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		return nil
	},
}

func init() {
	readCmd.Flags().StringVar(&readType, "type", "string", "value type: int, float, string, bool")
	writeCmd.Flags().StringVar(&writeType, "type", "string", "value type: int, float, string, bool")
}
