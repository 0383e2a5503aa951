/*
Copyright © 2021 Joseph Lewis <joseph@josephlewis.net>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"log"

	"github.com/josephlewis42/mathshell/core"
	"github.com/josephlewis42/mathshell/core/vos"
	"github.com/spf13/cobra"
)

var (
	seedFlags   machineFlags
	seedReplace bool
)

// seedCmd copies a Docker image into a user's filesystem
var seedCmd = &cobra.Command{
	Use:   "seed IMAGE_TAR [TAG]",
	Short: "Import a docker image into a user's filesystem.",
	Long: `Import the files of a docker image into a user's persisted filesystem.

Prepare an image by running the following:

	docker pull some-image:latest
	docker save some-image:latest > some-image.tar
	mathshell seed some-image.tar
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		inputPath := args[0]
		tag := ""
		if len(args) == 2 {
			tag = args[1]
		}

		layers, err := core.LoadImageLayers(inputPath, tag)
		if err != nil {
			return err
		}

		seedLogger := log.New(cmd.ErrOrStderr(), "[seed] ", 0)
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		machine, closeMachine, err := seedFlags.openMachine(cmd.Context(), cfg, seedLogger, vos.PTY{})
		if err != nil {
			return err
		}
		defer closeMachine()

		fs := machine.FS()
		if seedReplace {
			fs.Wipe()
		}

		count, err := core.ImportLayers(fs, layers)
		if err != nil {
			return err
		}
		if err := fs.MkdirP(fs.Home()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %d layers\n", count, len(layers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFlags.user, "user", "u", "", "Import into USER's filesystem rather than the configured user's.")
	seedCmd.Flags().BoolVar(&seedReplace, "replace", false, "Delete the existing files first rather than layering the image over them.")
}
