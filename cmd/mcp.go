package cmd

import (
	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/internal/loader"
	"github.com/huangsam/churnlab/internal/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the ChurnLab MCP server",
	Long:  `Launch an MCP server that allows AI agents to run churn pipelines via standard tools.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// The MCP tools carry their own dataset path arguments, so skip the
		// positional-argument validation of the shared setup and only load
		// defaults from config file and env.
		return mcpSetup()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, loader.NewCSVLoader())
	},
}

// mcpSetup resolves the base configuration that MCP tool calls override.
func mcpSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	if err := viper.Unmarshal(input); err != nil {
		return err
	}

	return contract.ProcessAndValidateBase(cfg, input)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
