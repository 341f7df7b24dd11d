// Copyright 2023 The TBox Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tboxgraph/tbox/clog"
	_ "github.com/tboxgraph/tbox/clog/glog"
	"github.com/tboxgraph/tbox/cmd/tbox/command"
	"github.com/tboxgraph/tbox/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tbox",
		Short: "tbox is an ahead-of-time ontology reasoner",
		Long: `tbox loads class-level (TBox) axioms from RDF quad files, materializes
the subsumption and equivalence closures once, and serves constant-time
is-subclass-of queries from the result.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "explicit path to the configuration file")
	rootCmd.PersistentFlags().Uint32("capacity", command.DefaultCapacity, "size of the entity universe")
	viper.BindPFlag(command.KeyCapacity, rootCmd.PersistentFlags().Lookup("capacity"))
	// let glog flags (-v, -logtostderr, ...) through
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	cobra.OnInitialize(func() {
		if file, _ := rootCmd.PersistentFlags().GetString("config"); file != "" {
			viper.SetConfigFile(file)
		} else {
			viper.SetConfigName("tbox")
			viper.AddConfigPath(".")
			viper.AddConfigPath("/etc")
		}
		viper.SetEnvPrefix("TBOX")
		viper.AutomaticEnv()
		if err := viper.ReadInConfig(); err == nil {
			clog.Infof("using config file: %s", viper.ConfigFileUsed())
		}
	})

	rootCmd.AddCommand(
		command.NewMaterializeCmd(),
		command.NewQueryCmd(),
		command.NewReplCmd(),
		command.NewHTTPCmd(),
		newVersionCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version information.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("tbox:")
			fmt.Printf("  version: %s\n", version.Version)
			fmt.Printf("  git hash: %s\n", version.GitHash)
			if version.BuildDate != "" {
				fmt.Printf("  build date: %s\n", version.BuildDate)
			}
		},
	}
}
