// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Conversation export command for the aide CLI.
//
// CLI: Non-interactive transcript export for scripting and backup
// SECURITY: Optional passphrase encryption for exported transcripts
//
// Handles the "aide export" command which fetches a conversation from
// the backend and writes it to a local file.
//
// Command: export <chat-id>
// Short:   Export a conversation to a file
// Aliases: (none)
//
// Examples:
//   aide export chat_1712345678_ab12
//   aide export chat_1712345678_ab12 --format json
//   aide export chat_1712345678_ab12 --output ~/notes
//   aide export chat_1712345678_ab12 --encrypt
//
// Flags:
//   -f, --format FMT    Output format: markdown, json (default from config)
//   -o, --output DIR    Output directory (default from config)
//   --encrypt           Seal the file with a passphrase (prompted)
//   --no-metadata       Omit the metadata header
//   --no-timestamps     Omit per-message timestamps
//
// The passphrase can also be supplied via AIDE_EXPORT_PASSPHRASE for
// scripted exports; interactive prompts require a TTY.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/config"
	"github.com/jeranaias/aide-tui/internal/export"
)

// passphraseEnvVar supplies the export passphrase non-interactively.
const passphraseEnvVar = "AIDE_EXPORT_PASSPHRASE"

// HandleExportCommand handles the "export" command.
func HandleExportCommand(args Args) error {
	parser := NewArgParser(args.Raw)

	chatID := parser.Positional(0)
	if chatID == "" {
		err := ErrMissingArgument("chat-id", "aide export chat_1712345678_ab12")
		if args.JSON {
			NewJSONErrorResponse("export", err).Print()
		}
		return err
	}

	cfg := config.Global()

	format := parser.FlagOrDefault("format", parser.FlagOrDefault("f", cfg.Export.Format))
	outputDir := parser.FlagOrDefault("output", parser.FlagOrDefault("o", cfg.Export.Dir))
	encrypt := parser.BoolFlag("encrypt")

	opts := export.DefaultOptions()
	opts.OutputDir = outputDir
	if parser.BoolFlag("no-metadata") {
		opts.IncludeMetadata = false
	}
	if parser.BoolFlag("no-timestamps") {
		opts.IncludeTimestamps = false
	}

	// Validate the format before touching the network.
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		usageErr := ErrUnsupportedFormat(format, []string{"markdown", "json"})
		if args.JSON {
			NewJSONErrorResponse("export", usageErr).Print()
		}
		return usageErr
	}

	// Keep exports inside home, cwd, or temp.
	if opts.OutputDir != "" && opts.OutputDir != "." {
		validated, err := ValidateOutputPath(opts.OutputDir)
		if err != nil {
			if args.JSON {
				NewJSONErrorResponse("export", err).Print()
			}
			return err
		}
		opts.OutputDir = validated
	}

	// Collect the passphrase before fetching so a typo doesn't waste the
	// round trip.
	if encrypt {
		passphrase, err := resolveExportPassphrase()
		if err != nil {
			if args.JSON {
				NewJSONErrorResponse("export", err).Print()
			}
			return err
		}
		opts.Passphrase = passphrase
	}

	client, err := newAPIClient()
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("export", err).Print()
		}
		return err
	}

	data, err := client.ExportChat(context.Background(), chatID)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			err = NewNotFoundError("chat", chatID)
		}
		if args.JSON {
			NewJSONErrorResponse("export", err).Print()
		}
		return err
	}

	path, err := export.ExportToFile(data, exporter, opts)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("export", err).Print()
		}
		return NewCommandError("export", "write", "could not write export file", err)
	}

	// JSON output mode
	if args.JSON {
		result := ExportResultData{
			Path:      path,
			Format:    format,
			ChatID:    chatID,
			Messages:  len(data.Messages),
			Encrypted: encrypt,
		}
		return NewJSONResponse("export", result).Print()
	}

	fmt.Printf("%s Exported %s (%d messages)\n",
		SuccessStyle.Render("[OK]"),
		data.Title,
		len(data.Messages))
	fmt.Printf("  %s\n", ValueStyle.Render(path))
	if encrypt {
		fmt.Printf("  %s\n", DimStyle.Render("Sealed with your passphrase. Keep it safe; there is no recovery."))
	}

	return nil
}

// resolveExportPassphrase fetches the passphrase from the environment or
// prompts twice on the terminal.
func resolveExportPassphrase() (string, error) {
	if pass := os.Getenv(passphraseEnvVar); pass != "" {
		return pass, nil
	}

	pass, err := ReadPassphrase("Passphrase: ")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", NewValidationError("passphrase", "", "must not be empty")
	}

	confirm, err := ReadPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", NewValidationError("passphrase", "", "entries did not match")
	}

	return pass, nil
}
