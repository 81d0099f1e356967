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
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/simbio/internal/config"
	"github.com/blacktop/simbio/internal/utils"
	"github.com/blacktop/simbio/pkg/coresim"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(unenrollCmd)

	enrollCmd.Flags().BoolP("pick", "p", false, "Pick a booted simulator when no UDID is given")
	unenrollCmd.Flags().BoolP("pick", "p", false, "Pick a booted simulator when no UDID is given")
}

// enrollCmd represents the enroll command
var enrollCmd = &cobra.Command{
	Use:   "enroll [SIMULATOR_UDID]",
	Short: "Enroll Touch ID / Face ID on a booted simulator",
	Example: heredoc.Doc(`
		# Enroll biometrics on a booted simulator
		❯ simbio enroll 8A1F6C3E-2B7D-4E0A-9C55-1D2E3F4A5B6C

		# Read the UDID from the environment
		❯ SIMULATOR_UDID=8A1F6C3E-2B7D-4E0A-9C55-1D2E3F4A5B6C simbio enroll

		# Use a specific Xcode
		❯ simbio enroll --developer-dir /Applications/Xcode-beta.app 8A1F6C3E-2B7D-4E0A-9C55-1D2E3F4A5B6C`),
	Args:          usageArgs(cobra.MaximumNArgs(1)),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnrollment(cmd, args, true)
	},
}

// unenrollCmd represents the unenroll command
var unenrollCmd = &cobra.Command{
	Use:   "unenroll [SIMULATOR_UDID]",
	Short: "Remove Touch ID / Face ID enrollment from a booted simulator",
	Example: heredoc.Doc(`
		# Unenroll biometrics on a booted simulator
		❯ simbio unenroll 8A1F6C3E-2B7D-4E0A-9C55-1D2E3F4A5B6C

		# Choose from the booted simulators
		❯ simbio unenroll --pick`),
	Args:          usageArgs(cobra.MaximumNArgs(1)),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnrollment(cmd, args, false)
	},
}

func setEnrollment(cmd *cobra.Command, args []string, enrolled bool) error {
	pick, _ := cmd.Flags().GetBool("pick")

	conf, err := config.LoadConfig()
	if err != nil {
		return err
	}

	udidStr := conf.UDID
	if len(args) > 0 {
		udidStr = args[0]
	}
	if len(udidStr) == 0 && pick {
		dev, err := utils.PickSimulator(conf.DeveloperDir)
		if err != nil {
			return err
		}
		udidStr = dev.UDID
	}

	udid, err := coresim.ParseUDID(udidStr)
	if err != nil {
		return err
	}

	log.WithField("developer_dir", conf.DeveloperDir).Debug("Loading CoreSimulator")
	sim, err := coresim.Open(conf.CoreSimulator())
	if err != nil {
		return err
	}
	defer sim.Close()
	utils.Indent(log.Debug, 2)("Using framework: " + sim.Path)

	if err := coresim.SetEnrollment(sim, udid, enrolled); err != nil {
		return err
	}

	if enrolled {
		log.WithField("udid", udid).Info("Biometrics enrolled")
	} else {
		log.WithField("udid", udid).Info("Biometrics unenrolled")
	}

	return nil
}
