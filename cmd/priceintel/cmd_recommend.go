package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"priceintel/internal/application"
)

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <upc>",
		Short: "Produce a one-shot price recommendation",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecommend,
	}
	cmd.Flags().Bool("pretty", true, "Indent the JSON output")
	return cmd
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.recommender.Recommend(ctx, application.Request{UPC: args[0]})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode recommendation: %w", err)
	}
	return nil
}
