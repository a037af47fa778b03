package commands

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// VersionInfo describes the CLI build.
type VersionInfo struct {
	Version    string `json:"version"     yaml:"version"`
	Commit     string `json:"commit"      yaml:"commit"`
	Built      string `json:"built"       yaml:"built"`
	APIVersion string `json:"api_version" yaml:"api_version"`
	UserAgent  string `json:"user_agent"  yaml:"user_agent"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(app *App, version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display the CLI build and the pinned API version",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version:    version,
				Commit:     commit,
				Built:      date,
				APIVersion: stripe.APIVersion,
				UserAgent:  stripe.UserAgent(&stripe.AppInfo{Name: "stripe-cli", Version: version}),
			}

			return app.render(info, func(table *tablewriter.Table) error {
				table.Header("Property", "Value")
				_ = table.Append("Version", info.Version)
				_ = table.Append("Commit", info.Commit)
				_ = table.Append("Built", info.Built)
				_ = table.Append("API Version", info.APIVersion)

				return nil
			})
		},
	}
}
