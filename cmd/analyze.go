package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/prompts"
	"github.com/spigell/resume-analyzer/internal/source"

	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single resume against a job description and print the result",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("job", "", "file with the job description, '-' reads stdin")
	analyzeCmd.Flags().String("resume", "", "resume PDF: a path, file://, http(s):// or s3://bucket/key")
	analyzeCmd.Flags().String("mode", "", fmt.Sprintf("analysis type, one of %s (asked interactively when empty and stdin is a terminal)", modeIDs()))

	analyzeCmd.MarkFlagRequired("job")
	analyzeCmd.MarkFlagRequired("resume")
}

func analyze(cmd *cobra.Command) {
	ctx := cmd.Context()

	config, logger := bootstrap()
	defer logger.Sync() //nolint:errcheck

	jobRef, _ := cmd.Flags().GetString("job")
	resumeRef, _ := cmd.Flags().GetString("resume")
	mode, _ := cmd.Flags().GetString("mode")

	job, err := readJobDescription(jobRef, cmd.InOrStdin())
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	interactive := jobRef != "-" && isTerminal(os.Stdin)
	mode, err = resolveMode(mode, interactive, selectMode)
	if err != nil {
		logger.Fatal("selecting analysis type", zap.Error(err))
	}

	resume, err := source.NewLoader().Load(ctx, resumeRef)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err), zap.String("resume", resumeRef))
	}

	pipeline, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("creating the analysis pipeline", zap.Error(err))
	}

	result, err := pipeline.Analyze(ctx, analysis.Input{
		JobDescription: job,
		Resume:         base64.StdEncoding.EncodeToString(resume),
		AnalysisType:   mode,
	})
	if err != nil {
		logger.Fatal("analysis failed",
			zap.String("message", analysis.Message(err)),
			zap.Stringer("category", analysis.Classify(err)),
			zap.Error(err),
		)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Text)
}

func readJobDescription(ref string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)

	if ref == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(ref)
	}
	if err != nil {
		return "", err
	}

	job := strings.TrimSpace(string(data))
	if job == "" {
		return "", errors.New("job description is empty")
	}

	return job, nil
}

var errModeRequired = errors.New("--mode is required when stdin is not a terminal")

// resolveMode returns mode when set. Otherwise it asks pick, but only for an
// interactive stdin.
func resolveMode(mode string, interactive bool, pick func() (string, error)) (string, error) {
	if mode = strings.TrimSpace(mode); mode != "" {
		return mode, nil
	}
	if !interactive {
		return "", errModeRequired
	}

	return pick()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func selectMode() (string, error) {
	prompt := promptui.Select{
		Label: "Analysis type",
		Items: modeIDs(),
	}

	_, mode, err := prompt.Run()

	return mode, err
}

func modeIDs() []string {
	modes := prompts.Modes()
	ids := make([]string, 0, len(modes))
	for _, m := range modes {
		ids = append(ids, m.String())
	}

	return ids
}
