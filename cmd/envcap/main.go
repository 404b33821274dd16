package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"envcap/internal/capture"
	"envcap/internal/config"
	"envcap/internal/emit"
	"envcap/internal/snapshot"
)

// Build-time variables - can be set via ldflags
var (
	Version   string = "dev"
	GitCommit string = "unknown"
)

// Global flags
var (
	cfgFile string

	shellName   string
	format      string
	exportShell string
	noSkip      bool
	showOutput  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "envcap",
	Short: "Capture environment changes made by a command in another shell",
	Long: `envcap runs a command or script inside a different shell interpreter
(sh, bash, zsh, fish, PowerShell, or one defined in the config file) and
reports which environment variables that execution changed or added.

The caller's own environment is never modified; the output is a mapping of
variable name to new value, ready to be applied by the calling shell.`,
	SilenceUsage: true,
}

var captureCmd = &cobra.Command{
	Use:   "capture [script]",
	Short: "Run a script in the target shell and print the changed variables",
	Long: `Run the given script text in the target shell and print the environment
variables it changed or added. The script is read from the argument, or from
stdin when no argument is given.

Variables the script removed are not reported. The script's own output is
suppressed unless --show-output is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCapture,
}

var dumpCmd = &cobra.Command{
	Use:    "env-dump <file>",
	Short:  "Serialize this process's environment to a file",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshot.Write(args[0], snapshot.FromEnviron(os.Environ()))
	},
}

var shellsCmd = &cobra.Command{
	Use:   "shells",
	Short: "List known shell dialects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.ResolvePath(cfgFile))
		if err != nil {
			return err
		}

		dialects := cfg.Dialects()
		names := make([]string, 0, len(dialects))
		for name := range dialects {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, dialects[name].Path)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("envcap %s\n", Version)
		fmt.Printf("Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/envcap/config.toml)")

	captureCmd.Flags().StringVarP(&shellName, "shell", "s", "", "target shell dialect (default from config, else sh)")
	captureCmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml, or export")
	captureCmd.Flags().StringVar(&exportShell, "export-shell", "sh", "shell syntax for --format export (sh, bash, zsh, fish)")
	captureCmd.Flags().BoolVar(&noSkip, "no-skip", false, "with --format export, do not drop conventionally skipped variables")
	captureCmd.Flags().BoolVar(&showOutput, "show-output", false, "forward the script's stdout and stderr to stderr")

	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(shellsCmd)
	rootCmd.AddCommand(versionCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.ResolvePath(cfgFile))
	if err != nil {
		return err
	}

	name := shellName
	if name == "" {
		name = cfg.DefaultShell
	}
	d, ok := cfg.Dialects()[name]
	if !ok {
		return fmt.Errorf("unknown shell dialect %q (see 'envcap shells')", name)
	}

	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	result, err := capture.Run(cmd.Context(), input, capture.Options{Dialect: d})
	if err != nil {
		return err
	}

	if showOutput {
		os.Stderr.Write(result.Stdout)
		os.Stderr.Write(result.Stderr)
	}

	return writeResult(cmd.OutOrStdout(), result.Vars, cfg)
}

// readInput returns the script text: the positional argument when present,
// stdin otherwise.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read script from stdin: %w", err)
	}
	return string(data), nil
}

// writeResult renders the captured variables in the requested format. The
// conventional skip list applies only to the export format: json and yaml
// are the raw diff, export is the apply-side view.
func writeResult(w io.Writer, vars map[string]string, cfg *config.Config) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(vars, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(vars)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "export":
		if !noSkip {
			vars = emit.Filter(vars, append(append([]string(nil), emit.DefaultSkip...), cfg.SkipVars...))
		}
		_, err := io.WriteString(w, emit.Exports(vars, exportShell))
		return err
	default:
		return fmt.Errorf("unknown format %q: want json, yaml, or export", format)
	}
}
