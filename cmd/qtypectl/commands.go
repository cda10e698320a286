package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-qtype/internal/app"
	auth "github.com/mind-engage/mindengage-qtype/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qtype/internal/config"
	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/question"
)

var (
	questionFile string
	answersFile  string
	prevFile     string
	nextFile     string
	component    string
	componentID  string

	tokenSub    string
	tokenRole   string
	tokenSecret string
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List registered question types and whether they are enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dispatcher()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, t := range d.Registry().Types() {
			on, err := d.IsEnabled(cmd.Context(), t)
			if err != nil {
				return err
			}
			h, _ := d.Registry().Lookup(t)
			fmt.Fprintf(out, "%-28s %-24s enabled=%t\n", t, h.Name(), on)
		}
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:     "evaluate",
	Short:   "Evaluate completeness and gradability of an answer snapshot",
	Example: `  qtypectl evaluate --question q.json --answers a.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dispatcher()
		if err != nil {
			return err
		}
		var req qtype.Request
		if err := readJSON(questionFile, &req.Question); err != nil {
			return err
		}
		if err := readJSON(answersFile, &req.Answers); err != nil {
			return err
		}
		req.Component, req.ComponentID = component, question.ComponentID(componentID)
		ev, err := d.Evaluate(cmd.Context(), req)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), ev)
	},
}

var sameCmd = &cobra.Command{
	Use:   "same",
	Short: "Check whether two answer snapshots are the same response",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dispatcher()
		if err != nil {
			return err
		}
		var (
			q          question.Question
			prev, next question.Answers
		)
		if err := readJSON(questionFile, &q); err != nil {
			return err
		}
		if err := readJSON(prevFile, &prev); err != nil {
			return err
		}
		if err := readJSON(nextFile, &next); err != nil {
			return err
		}
		same := d.IsSameResponse(q, prev, next, component, question.ComponentID(componentID))
		return writeJSON(cmd.OutOrStdout(), map[string]any{"type": q.Type, "same": same})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a service token for the qtyped HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenSecret == "" {
			return fmt.Errorf("--secret or AUTH_HMAC_SECRET required")
		}
		tok, err := auth.NewAuthService(tokenSecret).IssueJWT(tokenSub, tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{evaluateCmd, sameCmd} {
		c.Flags().StringVarP(&questionFile, "question", "q", "", "question JSON file")
		c.Flags().StringVar(&component, "component", "", "component the question is shown in")
		c.Flags().StringVar(&componentID, "component-id", "", "component instance id")
		_ = c.MarkFlagRequired("question")
	}
	evaluateCmd.Flags().StringVarP(&answersFile, "answers", "a", "", "answers JSON file (unprefixed field names)")
	_ = evaluateCmd.MarkFlagRequired("answers")

	sameCmd.Flags().StringVar(&prevFile, "prev", "", "previous answers JSON file")
	sameCmd.Flags().StringVar(&nextFile, "new", "", "new answers JSON file")
	_ = sameCmd.MarkFlagRequired("prev")
	_ = sameCmd.MarkFlagRequired("new")

	tokenCmd.Flags().StringVar(&tokenSub, "sub", "engine", "token subject")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "engine", "token role (engine|admin)")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", os.Getenv("AUTH_HMAC_SECRET"), "HMAC secret shared with qtyped")
}

func dispatcher() (*qtype.Dispatcher, error) {
	cfg := config.FromEnv()
	cfg.FlagSource = config.FlagsStatic
	site, err := config.LoadSite(siteFile)
	if err != nil {
		return nil, err
	}
	flags, err := app.OpenFlags(rootCmd.Context(), cfg, site)
	if err != nil {
		return nil, err
	}
	return app.NewDispatcher(cfg, site, flags.Source, logger)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
