package main

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tetratip/internal/config"
	"github.com/jmylchreest/tetratip/internal/render"
)

var configOpts struct {
	yaml  bool
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration tetratip and tetratipd use, after defaults have
been applied to the config file.`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Long: `Write the default configuration to path, or to the default config path.
A .yaml or .yml extension writes YAML, anything else TOML.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)

	configCmd.Flags().BoolVar(&configOpts.yaml, "yaml", false,
		"Print the configuration as YAML")
	configInitCmd.Flags().BoolVarP(&configOpts.force, "force", "f", false,
		"Overwrite an existing file")
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))
)

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := cfg.Marshal(configOpts.yaml)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := globalOpts.configPath
	if path == "" {
		path, _ = config.Path()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render("tetratip configuration"))
	fmt.Fprintln(out, labelStyle.Render("File: ")+path)
	fmt.Fprintln(out, labelStyle.Render("Popup chrome: ")+describeChrome(cfg))
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))
	return nil
}

// typicalContent is the content size used for the memory estimate.
var typicalContent = image.Pt(200, 48)

// describeChrome summarises the popup margins and the memory a popup of
// typical size needs for its two frame buffers.
func describeChrome(c *config.Config) string {
	pc := c.Tooltip.PopupConfig()
	margin := render.PlainMargin
	if pc.ShowShadow {
		margin = render.ShadowMargin
	}
	size := pc.WindowSize(typicalContent)
	buffers := uint64(2 * 4 * size.X * size.Y)

	var parts []string
	parts = append(parts, fmt.Sprintf("margin %dx%d", margin.X, margin.Y))
	if pc.Animated() {
		parts = append(parts, fmt.Sprintf("fade %s", pc.AnimationInterval*10))
	} else {
		parts = append(parts, "no fade")
	}
	parts = append(parts, fmt.Sprintf("%s per %dx%d popup", humanize.Bytes(buffers), size.X, size.Y))
	return strings.Join(parts, ", ")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := globalOpts.configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := config.Load(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("valid: ")+path)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := globalOpts.configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}

	if !configOpts.force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}
	if err := config.Default().Save(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("wrote: ")+path)
	return nil
}
