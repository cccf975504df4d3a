/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

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
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Paintersrp/retag/internal/constants"
	"github.com/Paintersrp/retag/internal/state"
	"github.com/Paintersrp/retag/pkg/cmd/root"
)

func Execute() {
	// RETAG_VAULTDIR, RETAG_LANGUAGE and friends override the settings file.
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	session := state.NewSession()
	rootCmd := root.NewCmdRoot(session)

	execErr := rootCmd.Execute()
	if err := session.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	if execErr != nil {
		os.Exit(1)
	}
}
