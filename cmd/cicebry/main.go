/*
Copyright © 2026 the cicebry authors.
This file is part of cicebry.

cicebry is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cicebry is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cicebry.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command cicebry generates and verifies CICE lateral boundary-condition
// files.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/metno/cicebry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// inDateFormat specifies the format to use when inputting dates.
const inDateFormat = "20060102"

var cfgFile string

func main() {
	log.SetFlags(0)
	if err := rootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cicebry",
		Short: "cicebry generates CICE lateral boundary-condition files",
		Long: `cicebry generates a lateral boundary-condition file for the CICE
sea-ice model from a model grid file, an ocean/ice climatology file and an
atmospheric forcing file, distributing the aggregate ice state over the
CICE thickness categories at the four domain boundaries.

Options may be given as flags or in a configuration file (--config).
The resulting file can be inspected with 'ncdump -h <file>'.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("reading configuration file: %v", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file location")

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a boundary file from grid, climatology and atmosphere sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate()
		},
	}
	flags := generate.Flags()
	flags.String("bry", "", "path of the boundary file to create")
	flags.String("grid", "", "grid file with lon_rho, lat_rho and mask_rho")
	flags.String("clm", "", "climatology file with the ice and ocean state time series")
	flags.String("atm", "", "atmospheric forcing file with the Tair time series")
	flags.String("restart", "", "optional CICE restart file")
	flags.String("start", "", "first day of boundary data, format "+inDateFormat)
	flags.String("end", "", "last day of boundary data, format "+inDateFormat)
	flags.String("time-units", "days since 2008-01-01 00:00:00", "time units of the output Time coordinate")
	flags.Int("ice-layers", cicebry.DefaultIceLayers, "number of vertical ice levels")
	flags.Bool("overwrite", false, "overwrite an existing boundary file")
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	verify := &cobra.Command{
		Use:   "verify boundary-file",
		Short: "Check that an existing boundary file contains exactly the expected variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args[0])
		},
	}

	root.AddCommand(generate, verify)
	return root
}

func runGenerate() error {
	for _, req := range []string{"bry", "grid", "clm", "atm", "start", "end"} {
		if viper.GetString(req) == "" {
			return fmt.Errorf("required option %q not set", req)
		}
	}
	start, err := time.Parse(inDateFormat, viper.GetString("start"))
	if err != nil {
		return fmt.Errorf("parsing start date: %v", err)
	}
	end, err := time.Parse(inDateFormat, viper.GetString("end"))
	if err != nil {
		return fmt.Errorf("parsing end date: %v", err)
	}

	bry, err := cicebry.NewBoundaryFile(viper.GetString("bry"), cicebry.ModeWrite, viper.GetBool("overwrite"))
	if err != nil {
		return err
	}
	g := cicebry.NewGenerator(bry, cicebry.EngineConfig{IceLayers: viper.GetInt("ice-layers")}, nil)
	defer g.Close()

	if err := g.SetGrid(viper.GetString("grid")); err != nil {
		return err
	}
	if err := g.SetClim(viper.GetString("clm")); err != nil {
		return err
	}
	if err := g.SetAtmos(viper.GetString("atm")); err != nil {
		return err
	}
	if rst := viper.GetString("restart"); rst != "" {
		if err := g.SetRestart(rst); err != nil {
			return err
		}
	}
	g.SetDates(start, end, viper.GetString("time-units"))

	if err := g.Generate(); err != nil {
		return err
	}
	log.Printf("wrote boundary file %s", bry.Path())
	return nil
}

func runVerify(path string) error {
	b, err := cicebry.NewBoundaryFile(path, cicebry.ModeRead, false)
	if err != nil {
		return err
	}
	defer b.Close()
	return b.Verify()
}
