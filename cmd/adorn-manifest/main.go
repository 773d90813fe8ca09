// Command adorn-manifest builds the route manifest of a project by
// static analysis and prints it as JSON. With --openapi it emits the
// OpenAPI document derived from the same manifest instead.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/celsowm/adorn-api-sub006/analyzer"
	"github.com/celsowm/adorn-api-sub006/buildcache"
	"github.com/celsowm/adorn-api-sub006/logger"
	"github.com/celsowm/adorn-api-sub006/manifest"
	"github.com/celsowm/adorn-api-sub006/schema"
)

var version = "dev" // Set during build

type options struct {
	output     string
	openapi    bool
	format     string
	title      string
	apiVersion string
	cacheDir   string
	noCache    bool
	verbose    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "adorn-manifest <project-root>",
		Short: "Build a route manifest from static analysis",
		Long: `Analyzes a project's controller registrations and handler signatures,
reconciles both sources into a route manifest and prints it as JSON.

With --openapi the manifest is projected into an OpenAPI 3.0.1 document.`,
		Example: `  # Print the route manifest for the current project
  adorn-manifest .

  # Emit the OpenAPI document as YAML
  adorn-manifest --openapi --format yaml ./my-service`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "Output file path (- for stdout)")
	cmd.Flags().BoolVar(&opts.openapi, "openapi", false, "Emit the OpenAPI document instead of the manifest")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "OpenAPI output format (json|yaml)")
	cmd.Flags().StringVar(&opts.title, "title", "API", "OpenAPI document title")
	cmd.Flags().StringVar(&opts.apiVersion, "api-version", "1.0.0", "OpenAPI document version")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", ".adorn-cache", "Build cache directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Bypass the build cache")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

func run(root string, opts *options) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("project root %s: %w", root, err)
	}
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unsupported format %q (supported: json, yaml)", opts.format)
	}

	log := newLogger(opts.verbose)

	payload, err := buildManifest(root, opts, log)
	if err != nil {
		return err
	}

	if opts.openapi {
		payload, err = renderOpenAPI(payload, opts)
		if err != nil {
			return err
		}
	}

	return write(opts.output, payload)
}

// buildManifest returns the manifest JSON, reusing the cached bytes
// when every input is unchanged so warm builds are byte-identical to
// cold ones.
func buildManifest(root string, opts *options, log logger.Logger) ([]byte, error) {
	var snapshot *buildcache.Record
	if !opts.noCache {
		var err error
		snapshot, err = buildcache.Snapshot(root, "adorn-manifest", version, nil)
		if err != nil {
			return nil, err
		}
		cached, err := buildcache.Load(opts.cacheDir)
		if err != nil {
			return nil, err
		}
		if cached.Matches(snapshot) {
			log.Debug().Str("dir", opts.cacheDir).Msg("Build cache hit")
			return []byte(cached.Manifest), nil
		}
	}

	analysis, err := analyzer.New(root).Analyze()
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("controllers", len(analysis.Controllers)).
		Int("routes", len(analysis.Matches)).
		Msg("Analysis complete")

	routes, err := manifest.Build(analysis.Controllers, analysis.Matches)
	if err != nil {
		return nil, err
	}

	doc := manifest.Document{Routes: routes}
	payload, err := doc.MarshalIndent()
	if err != nil {
		return nil, err
	}

	if snapshot != nil {
		snapshot.Manifest = string(payload)
		if err := buildcache.Write(opts.cacheDir, snapshot); err != nil {
			log.Warn().Err(err).Msg("Failed to write build cache")
		}
	}
	return payload, nil
}

func renderOpenAPI(manifestJSON []byte, opts *options) ([]byte, error) {
	var doc manifest.Document
	if err := doc.Unmarshal(manifestJSON); err != nil {
		return nil, err
	}

	gen := schema.NewGenerator(schema.NewPlaygroundProvider(), schema.Info{
		Title:   opts.title,
		Version: opts.apiVersion,
	})
	api := gen.Generate(doc.Routes)

	if opts.format == "yaml" {
		return api.YAML()
	}
	return api.JSON()
}

func write(output string, payload []byte) error {
	if len(payload) == 0 || payload[len(payload)-1] != '\n' {
		payload = append(payload, '\n')
	}
	if output == "-" || output == "" {
		_, err := os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(output, payload, 0o644)
}

func newLogger(verbose bool) logger.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.NewWithWriter(level, true, os.Stderr)
}
