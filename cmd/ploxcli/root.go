package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rfuzzo/plox/internal/gameconfig"
)

// globalFlags are the flags every subcommand accepts, mirroring
// SPEC_FULL.md's CLI surface: --game, --rules-dir, --config, plus each
// subcommand's own flags.
type globalFlags struct {
	game           string
	gameRoot       string
	rulesDir       string
	bundle         string
	configPath     string
	unstable       bool
	noDownload     bool
	nonInteractive bool
}

// NewRootCmd builds the ploxcli root command and wires every subcommand.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "ploxcli",
		Short: "PLOX orders a plugin load order against community rules",
		Long: `ploxcli reads a game's installed plugins and a community rule
set, then sorts, lists, or verifies the load order the rules imply.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Reports go to stdout; cobra's Print helpers otherwise fall back to
	// stderr.
	cmd.SetOut(os.Stdout)

	cmd.PersistentFlags().StringVar(&flags.game, "game", string(gameconfig.GameMorrowind), "game: morrowind, openmw, or cyberpunk2077")
	cmd.PersistentFlags().StringVar(&flags.gameRoot, "game-root", ".", "game installation directory")
	cmd.PersistentFlags().StringVar(&flags.rulesDir, "rules-dir", "./rules", "directory of rule files")
	cmd.PersistentFlags().StringVar(&flags.bundle, "bundle", "", "path to a zip/7z/tar rule bundle archive; extracted rule files are used instead of --rules-dir")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a .env-style config file")
	cmd.PersistentFlags().BoolVar(&flags.unstable, "unstable", false, "use the faster, less stable Kahn's-algorithm sorter")
	cmd.PersistentFlags().BoolVar(&flags.noDownload, "no-download", false, "accepted for interface compatibility; this build never downloads rule bundles")
	cmd.PersistentFlags().BoolVar(&flags.nonInteractive, "non-interactive", false, "never prompt; fail instead of asking")

	cmd.AddCommand(newSortCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newVerifyCmd(flags))

	return cmd
}

// resolveGame validates the --game flag up front, the same validation
// config.Config.Validate applies to the server's default game.
func resolveGame(flags *globalFlags) (gameconfig.Game, error) {
	game := gameconfig.Game(flags.game)
	switch game {
	case gameconfig.GameMorrowind, gameconfig.GameOpenMW, gameconfig.GameCyberpunk:
		return game, nil
	default:
		return "", fmt.Errorf("unsupported --game %q (want morrowind, openmw, or cyberpunk2077)", flags.game)
	}
}
