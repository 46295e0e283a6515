// Command venchup signs benchmark results with a machine's key and uploads
// them to a venchmarks server. It speaks the same protocol as the generated
// venchup.py script and can read its settings from one.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"venchmarks/internal/credential"
	"venchmarks/internal/hwinfo"
	"venchmarks/internal/signer"
	"venchmarks/internal/venchup"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "venchup:", err)
		os.Exit(1)
	}
}

type options struct {
	script  string
	machine string
	keyFile string
	url     string
	digest  string
	dryRun  bool
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "venchup [file | -]",
		Short: "Upload venchmark results for a registered machine",
		Long: `venchup signs a JSON results payload with the machine's private key
and submits it to the venchmarks server. With "-" the payload is read from
standard input.

Machine name, key, digest and upload URL come from a downloaded venchup.py
(--script) or from the individual flags, which take precedence.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := resolve(opts, cmd.Flags().Changed("digest"))
			if err != nil {
				return err
			}
			if len(args) == 0 {
				printUsage(cmd.OutOrStdout(), cmd.CommandPath(), params.MachineName)
				return nil
			}
			return upload(cmd.Context(), logger, params, opts.dryRun, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.script, "script", "", "read machine, key, digest and URL from a downloaded venchup.py")
	f.StringVar(&opts.machine, "machine", "", "machine name")
	f.StringVar(&opts.keyFile, "key-file", "", "file holding the machine's private key (PEM or escaped single-line form)")
	f.StringVar(&opts.url, "url", "", "upload endpoint, e.g. https://vench.example.com/upload")
	f.StringVar(&opts.digest, "digest", string(signer.DefaultDigest), "HMAC digest: sha1, sha256 or sha512")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the signed form instead of uploading it")

	cmd.AddCommand(newHWInfoCmd())
	return cmd
}

func newHWInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hwinfo",
		Short: "Print this host's hardware description as JSON",
		Long: `hwinfo prints the CPU vendor, model, topology, caches and instruction-set
features of this host. Paste the output into the Hardware field when
registering the machine.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return hwinfo.Probe().WriteJSON(cmd.OutOrStdout())
		},
	}
}

func resolve(opts options, digestSet bool) (venchup.Params, error) {
	var p venchup.Params
	if opts.script != "" {
		text, err := os.ReadFile(opts.script)
		if err != nil {
			return p, err
		}
		if p, err = venchup.ParseScript(string(text)); err != nil {
			return p, fmt.Errorf("%s: %w", opts.script, err)
		}
	}

	if opts.machine != "" {
		p.MachineName = opts.machine
	}
	if opts.keyFile != "" {
		key, err := os.ReadFile(opts.keyFile)
		if err != nil {
			return p, err
		}
		pemText := credential.Unescape(strings.TrimSpace(string(key)))
		p.PrivateKey = credential.Escape(strings.TrimRight(pemText, "\n") + "\n")
	}
	if opts.url != "" {
		p.UploadURL = opts.url
	}
	if digestSet || p.Digest == "" {
		d, err := signer.ParseDigest(opts.digest)
		if err != nil {
			return p, err
		}
		p.Digest = d
	}

	if p.MachineName == "" {
		return p, fmt.Errorf("no machine name: use --script or --machine")
	}
	return p, nil
}

func printUsage(w io.Writer, script, machine string) {
	fmt.Fprintf(w, `  Program to upload venchmark results for machine '%s'
  Usage:
    %s <in file>     -- upload JSON data from given file
    %s -             -- upload JSON data from stdin
`, machine, script, script)
}

func upload(ctx context.Context, logger *slog.Logger, p venchup.Params, dryRun bool, source string, stdin io.Reader, stdout io.Writer) error {
	if p.PrivateKey == "" {
		return fmt.Errorf("no private key: use --script or --key-file")
	}

	var (
		payload []byte
		err     error
	)
	if source == "-" {
		payload, err = io.ReadAll(stdin)
	} else {
		payload, err = os.ReadFile(source)
	}
	if err != nil {
		return err
	}

	s, err := signer.New(p.MachineName, []byte(credential.Unescape(p.PrivateKey)), p.Digest)
	if err != nil {
		return err
	}

	if dryRun {
		body, err := s.Sign(payload)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, body)
		return nil
	}

	if p.UploadURL == "" {
		return fmt.Errorf("no upload URL: use --script or --url")
	}
	logger.Info("uploading", "machine", p.MachineName, "url", p.UploadURL, "bytes", len(payload))
	reply, err := signer.NewClient(p.UploadURL).Submit(ctx, s, payload)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, strings.TrimSpace(reply))
	return nil
}
