/*
Copyright © 2018-2026 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/blacktop/simbio/internal/colors"
	"github.com/blacktop/simbio/internal/config"
	"github.com/blacktop/simbio/internal/simctl"
	"github.com/blacktop/simbio/internal/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("booted", "b", false, "Only list booted simulators")
	listCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	viper.BindPFlag("list.booted", listCmd.Flags().Lookup("booted"))
	viper.BindPFlag("list.json", listCmd.Flags().Lookup("json"))
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:           "list",
	Aliases:       []string{"ls"},
	Short:         "List simulators and their state",
	Args:          usageArgs(cobra.NoArgs),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		bootedOnly := viper.GetBool("list.booted")
		asJSON := viper.GetBool("list.json")

		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}

		runtimes, err := simctl.List(conf.DeveloperDir)
		if err != nil {
			return fmt.Errorf("failed to list simulators: %w", err)
		}

		if asJSON {
			var out any = runtimes
			if bootedOnly {
				out = simctl.Booted(runtimes)
			}
			dat, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal simulators to JSON: %w", err)
			}
			fmt.Println(string(dat))
			return nil
		}

		if n := printRuntimes(os.Stdout, runtimes, bootedOnly); n == 0 {
			log.Warn("No simulators found")
		}

		return nil
	},
}

func printRuntimes(w io.Writer, runtimes []simctl.Runtime, bootedOnly bool) int {
	var count int
	for _, rt := range runtimes {
		var devices []simctl.Device
		for _, dev := range rt.Devices {
			if bootedOnly && !dev.Booted() {
				continue
			}
			devices = append(devices, dev)
		}
		if len(devices) == 0 {
			continue
		}
		colors.BoldBlue().Fprintf(w, "%s\n", rt.Name())
		for _, dev := range devices {
			fmt.Fprintf(w, "%s%-32s %s  %s", utils.Pad(2), dev.Name, dev.UDID, colors.State(dev.State))
			if !dev.LastBootedAt.IsZero() {
				colors.Faint().Fprintf(w, "  (booted %s)", humanize.Time(dev.LastBootedAt))
			}
			if !dev.IsAvailable {
				colors.HiRed().Fprintf(w, "  unavailable: %s", dev.AvailabilityError)
			}
			fmt.Fprintln(w)
			count++
		}
	}
	return count
}
