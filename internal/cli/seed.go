// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/models"
)

func newSeedCmd(opener Opener, out *outputOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalogue data",
	}
	cmd.AddCommand(newSeedDocumentsCmd(opener, out))
	return cmd
}

type seedResult struct {
	Loaded int `json:"loaded"`
}

func newSeedDocumentsCmd(opener Opener, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "documents <file.json|->",
		Short: "Upsert documents from a JSON array",
		Long: `Upsert documents from a JSON array of document objects, as returned by
the documents API. Use "-" to read from standard input. Every document
is validated before any is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			docs, err := readDocuments(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			return withEngine(cmd, opener, func(ctx context.Context, e Engine) error {
				for i := range docs {
					if err := e.UpsertDocument(ctx, &docs[i]); err != nil {
						return fmt.Errorf("document %d (index %d): %w", docs[i].ID, i, err)
					}
				}
				if out.text() {
					fmt.Fprintf(cmd.OutOrStdout(), "loaded %d documents\n", len(docs))
					return nil
				}
				return writeJSON(cmd.OutOrStdout(), seedResult{Loaded: len(docs)})
			})
		},
	}
}

func readDocuments(stdin io.Reader, path string) ([]models.Document, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var docs []models.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents in %s", path)
	}
	for i := range docs {
		if docs[i].ID <= 0 {
			return nil, fmt.Errorf("document at index %d has no positive id", i)
		}
	}
	return docs, nil
}
