package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/textcore/internal/agent"
	"github.com/dshills/textcore/internal/analysis/diff"
	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/ingest"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] path",
	Short: "Print the syntax tokens of a project file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

var foldCmd = &cobra.Command{
	Use:   "fold [flags] path",
	Short: "Print the folding ranges of a project file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFold,
}

var bracketsCmd = &cobra.Command{
	Use:   "brackets [flags] path",
	Short: "Print bracket pairs and unmatched brackets of a project file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrackets,
}

var diffCmd = &cobra.Command{
	Use:   "diff [flags] old new",
	Short: "Print a unified diff of two files",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

var searchCmd = &cobra.Command{
	Use:   "search [flags] query",
	Short: "Search every project file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var findCmd = &cobra.Command{
	Use:   "find [flags] name",
	Short: "Rank project files by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runFind,
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the project tree",
	Args:  cobra.NoArgs,
	RunE:  runTree,
}

var contextCmd = &cobra.Command{
	Use:   "context [flags]",
	Short: "Print the agent context of the project",
	Args:  cobra.NoArgs,
	RunE:  runContext,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Load the project and follow changes on disk",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

var configCmd = &cobra.Command{
	Use:   "config [flags]",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	for _, c := range []*cobra.Command{tokenizeCmd, foldCmd, bracketsCmd, diffCmd, searchCmd, findCmd, treeCmd} {
		c.Flags().String("format", "pretty", "output format (pretty|json)")
	}
	tokenizeCmd.Flags().String("language", "", "tokenize as this language instead of the detected one")

	diffCmd.Flags().String("algorithm", "", "diff algorithm (myers|heuristic); defaults to the config")
	diffCmd.Flags().IntP("context", "U", -1, "context lines; defaults to the config")

	searchCmd.Flags().Bool("regex", false, "treat the query as a regular expression")
	searchCmd.Flags().Bool("case-sensitive", false, "match case")
	searchCmd.Flags().BoolP("word", "w", false, "match whole words")
	searchCmd.Flags().StringSlice("include", nil, "only search paths matching these globs")
	searchCmd.Flags().StringSlice("exclude", nil, "skip paths matching these globs")
	searchCmd.Flags().Int("max", 0, "maximum number of matches; defaults to the config")

	contextCmd.Flags().String("format", "json", "output format (json|msgpack)")
	contextCmd.Flags().String("active", "", "project file to make active")

	configCmd.Flags().String("format", "toml", "output format (toml|yaml)")
}

func formatFlag(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	return format, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// requireFile fails when path has no buffer.
func (s *session) requireFile(path string) error {
	if !s.engine.HasBuffer(path) {
		return fmt.Errorf("%s is not a loaded file under %s", path, s.root)
	}
	return nil
}

func runTokenize(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	if err := s.requireFile(args[0]); err != nil {
		return err
	}
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	lang, _ := cmd.Flags().GetString("language")
	if lang == "" {
		lang = s.engine.Language(args[0])
	}
	tokens, err := s.engine.TokenizeAs(args[0], lang)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, tokens)
	case "pretty":
		lines, _ := s.engine.Lines(args[0])
		for _, tok := range tokens {
			line := lines[tok.Line]
			text := line[min(tok.Column, len(line)):min(tok.EndColumn(), len(line))]
			fmt.Fprintf(out, "%d:%d\t%-12s %q\n", tok.Line+1, tok.Column+1, tok.Type, text)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func runFold(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	if err := s.requireFile(args[0]); err != nil {
		return err
	}
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	ranges, err := s.engine.FoldingRanges(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, ranges)
	case "pretty":
		for _, r := range ranges {
			fmt.Fprintf(out, "%d-%d\t%s (%d lines)\n", r.StartLine+1, r.EndLine+1, r.Kind, r.Lines())
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func runBrackets(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	if err := s.requireFile(args[0]); err != nil {
		return err
	}
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	res, err := s.engine.BracketScan(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, res)
	case "pretty":
		for _, p := range res.Pairs {
			fmt.Fprintf(out, "%c %d:%d - %d:%d depth %d\n", p.Char,
				p.Open.Line+1, p.Open.Column+1, p.Close.Line+1, p.Close.Column+1, p.Depth)
		}
		warn := s.paint(color.FgYellow)
		for _, u := range res.Unmatched {
			kind := "closer"
			if u.Opener {
				kind = "opener"
			}
			warn.Fprintf(out, "unmatched %s %s at %d:%d\n", kind, u.Char, u.Position.Line+1, u.Position.Column+1)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func runDiff(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, false)
	if err != nil {
		return err
	}
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	ids := make([]string, 2)
	for i, p := range args {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		text, enc, err := buffer.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		buf, err := s.engine.CreateBuffer(text, buffer.WithEncoding(enc))
		if err != nil {
			return err
		}
		ids[i] = buf.ID
	}

	opts := s.engine.DiffOptions()
	if algo, _ := cmd.Flags().GetString("algorithm"); algo != "" {
		if opts.Algorithm, err = diff.ParseAlgorithm(algo); err != nil {
			return err
		}
	}
	if n, _ := cmd.Flags().GetInt("context"); n >= 0 {
		opts.ContextLines = n
	}
	res, err := s.engine.DiffWith(ids[0], ids[1], opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, res)
	case "pretty":
		s.printUnified(out, res, args[0], args[1])
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	opts := s.engine.SearchOptions()
	flags := cmd.Flags()
	opts.UseRegex, _ = flags.GetBool("regex")
	if flags.Changed("case-sensitive") {
		opts.CaseSensitive, _ = flags.GetBool("case-sensitive")
	}
	opts.WholeWord, _ = flags.GetBool("word")
	opts.IncludePaths, _ = flags.GetStringSlice("include")
	opts.ExcludePaths, _ = flags.GetStringSlice("exclude")
	if n, _ := flags.GetInt("max"); n > 0 {
		opts.MaxResults = n
	}

	matches, err := s.engine.SearchInFiles(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, matches)
	case "pretty":
		loc := s.paint(color.FgMagenta)
		hit := s.paint(color.FgRed, color.Bold)
		for _, m := range matches {
			before, after, _ := strings.Cut(m.LineText, m.Match)
			loc.Fprintf(out, "%s:%d:%d:", m.Path, m.Line, m.Column)
			fmt.Fprintf(out, " %s%s%s\n", before, hit.Sprint(m.Match), after)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func runFind(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	matches := s.engine.FindFileByName(args[0])

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, matches)
	case "pretty":
		for _, m := range matches {
			fmt.Fprintf(out, "%.2f\t%s\n", m.Score, m.Path)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func runTree(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	t := s.engine.ProjectTree()

	switch format {
	case "json":
		return writeJSON(cmd.OutOrStdout(), t.Entries())
	case "pretty":
		return t.Format(cmd.OutOrStdout())
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func runContext(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	if active, _ := cmd.Flags().GetString("active"); active != "" {
		if err := s.engine.SetActiveFile(active); err != nil {
			return err
		}
	}
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	ctx := agent.Snapshot(s.engine)
	var data []byte
	switch format {
	case "json":
		data, err = ctx.EncodeJSON()
	case "msgpack":
		data, err = ctx.EncodeMsgpack()
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runWatch(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colors := map[ingest.ChangeKind]*color.Color{
		ingest.ChangeLoaded:  s.paint(color.FgGreen),
		ingest.ChangeUpdated: s.paint(color.FgYellow),
		ingest.ChangeRemoved: s.paint(color.FgRed),
		ingest.ChangeSkipped: s.paint(color.Faint),
	}
	w, err := ingest.NewWatcher(s.engine, s.root, ingest.Options{Logger: s.logger},
		ingest.WithNotify(func(c ingest.Change) {
			colors[c.Kind].Fprintf(out, "%-8s %s\n", c.Kind, c.Path)
		}))
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintf(out, "watching %s (%d files)\n", s.root, len(s.engine.Paths()))
	if err := w.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
		return err
	}
	return nil
}

func runConfig(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd, false)
	if err != nil {
		return err
	}
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	var f config.Format
	switch format {
	case "toml":
		f = config.FormatTOML
	case "yaml":
		f = config.FormatYAML
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	data, err := config.Encode(s.cfg, f)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
