package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/sngedit/internal/adapters/secondary/config"
	"github.com/fredcamaral/sngedit/internal/domain/services"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sngedit configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the global config file with defaults",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show [dir]",
		Short: "Print the effective configuration for a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigShow,
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")

	loader := config.NewTOMLLoaderWithPath(cfgPath)
	path := loader.GetGlobalPath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	configService := services.NewConfigService(loader, config.NewConfigMerger(), nil)
	if err := configService.CreateGlobalConfig(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0] + "/"
	}

	a, err := newApp(cmd, dir, nil, true)
	if err != nil {
		return err
	}
	defer a.close()

	encoder := toml.NewEncoder(cmd.OutOrStdout())
	encoder.Indent = "  "
	return encoder.Encode(a.cfg)
}
