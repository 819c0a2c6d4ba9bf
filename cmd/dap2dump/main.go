// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package main contains the CLI implementation of dap2dump. It uses the
// cobra package for CLI tool implementation, the same way the rest of the
// dap2 CLI ecosystem it was imitating does.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/saferwall/dap2"
)

func newLogger() *log.Helper {
	logger := log.NewStdLogger(os.Stderr)
	logger = log.NewFilter(logger, log.FilterLevel(log.LevelInfo))
	return log.NewHelper(logger)
}

func prettyPrint(v any) string {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<error marshaling: %v>", err)
	}
	return string(buf)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "dap2dump",
		Short: "Parse and inspect OPeNDAP DAP2 DAS/DDS/DODS documents",
	}

	rootCmd.AddCommand(dasCmd())
	rootCmd.AddCommand(ddsCmd())
	rootCmd.AddCommand(dodsCmd())
	rootCmd.AddCommand(urlCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func dasCmd() *cobra.Command {
	var lenientDup bool
	cmd := &cobra.Command{
		Use:   "das <file.das>",
		Short: "Parse a DAS document and print its attribute tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			logger := newLogger()
			data, err := ReadFile(args[0])
			if err != nil {
				return err
			}
			das, err := dap2.ParseDAS(string(data), &dap2.DASOptions{
				AllowDuplicateAttribute: lenientDup,
				Logger:                  logger,
			})
			if err != nil {
				return err
			}
			fmt.Println(prettyPrint(das))
			return nil
		},
	}
	cmd.Flags().BoolVar(&lenientDup, "allow-duplicate-attribute", false,
		"treat a repeated attribute key within a block as last-wins instead of fatal")
	return cmd
}

func ddsCmd() *cobra.Command {
	var canonical bool
	cmd := &cobra.Command{
		Use:   "dds <file.dds>",
		Short: "Parse a DDS document and print its schema as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := ReadFile(args[0])
			if err != nil {
				return err
			}
			ds, err := dap2.ParseDDS(string(data))
			if err != nil {
				return err
			}
			if canonical {
				fmt.Print(ds.String())
				return nil
			}
			fmt.Println(prettyPrint(ds))
			return nil
		},
	}
	cmd.Flags().BoolVar(&canonical, "canonical", false, "re-emit canonical DDS text instead of JSON")
	return cmd
}

func dodsCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "dods <file.dods>",
		Short: "Decode a DODS response and print its schema and variables as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			logger := newLogger()
			data, err := ReadFile(args[0])
			if err != nil {
				return err
			}
			dec := dap2.NewDecoder(&dap2.DecodeOptions{Strict: strict, Logger: logger})
			result, err := dec.Decode(data)
			if err != nil {
				return err
			}
			fmt.Println(prettyPrint(result))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat trailing bytes after the payload as fatal")
	return cmd
}

func urlCmd() *cobra.Command {
	var constraint string
	cmd := &cobra.Command{
		Use:   "url <base>",
		Short: "Print the .das/.dds/.dods URLs for a base dataset URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := dap2.NewURLBuilder(args[0])
			if err != nil {
				return err
			}
			fmt.Println(b.DASURL())
			fmt.Println(b.DDSURL())
			fmt.Println(b.DODSURL(constraint))
			return nil
		},
	}
	cmd.Flags().StringVar(&constraint, "constraint", "", "constraint expression to append to the .dods URL")
	return cmd
}
