// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package cli

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const (
	outputJSON = "json"
	outputText = "text"
)

type outputOptions struct {
	format string
}

func (o *outputOptions) addFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&o.format, "output", "o", outputJSON, "output format: json or text")
}

func (o *outputOptions) validate() error {
	switch o.format {
	case outputJSON, outputText:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want json or text)", o.format)
	}
}

func (o *outputOptions) text() bool {
	return o.format == outputText
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
