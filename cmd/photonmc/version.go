// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import "github.com/spf13/cobra"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this build of photonmc.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("photonmc v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

func init() {
	Root.AddCommand(versionCmd)
}
