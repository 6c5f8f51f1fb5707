package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/career-boost/internal/ai"
)

// Set with -ldflags "-X github.com/spigell/career-boost/cmd.version=...".
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and supported AI providers",
	Run: func(cmd *cobra.Command, _ []string) {
		short, _ := cmd.Flags().GetBool("short")
		fmt.Fprint(cmd.OutOrStdout(), versionInfo(short))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("short", false, "print only the version number")
}

func versionInfo(short bool) string {
	if short {
		return version + "\n"
	}

	providers := []string{ai.ProviderGemini, ai.ProviderAnthropic, ai.ProviderOpenAI}
	return fmt.Sprintf("%s version: %s\ngo: %s %s/%s\nai providers: %s\n",
		app, version, runtime.Version(), runtime.GOOS, runtime.GOARCH, strings.Join(providers, ", "))
}
