package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-tweetcard"
	"github.com/alnah/go-tweetcard/internal/fileutil"
	"github.com/alnah/go-tweetcard/internal/imagefetch"
)

// Sentinel errors for the render command.
var (
	ErrNoBody      = errors.New("no tweet text specified (use --body or --body-file)")
	ErrReadBody    = errors.New("failed to read tweet text")
	ErrReadImage   = errors.New("failed to read image file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// maxBodyFileBytes caps --body-file. Far above the rune limit, so the
// validator reports an over-long body rather than a truncated one.
const maxBodyFileBytes = 64 << 10

// runRender renders one card to a PNG file, or to HTML with --html-only.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f, err := parseRenderFlags(args)
	if err != nil {
		if errors.Is(err, errHelp) {
			printRenderUsage(env.Stdout)
			return nil
		}
		return err
	}

	cfg, err := resolveConfig(f.common, env)
	if err != nil {
		return err
	}
	mergeEngineFlags(f.engine, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	fields, err := buildFields(f.card, env)
	if err != nil {
		return err
	}

	log, closer, err := newLogger(cfg, f.common, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	gen, err := env.NewGenerator(generatorOptions(cfg, log)...)
	if err != nil {
		return err
	}
	defer func() { _ = gen.Close() }()

	if f.output.htmlOnly {
		return writeHTML(gen, fields, f, env)
	}

	res, err := gen.Generate(ctx, fields)
	if err != nil {
		return err
	}

	path := f.output.path
	if path == "" {
		path = res.Filename
	}
	if err := fileutil.WriteFileAtomic(path, res.PNG, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s (%dx%d, %s)\n", path, res.Width, res.Height, res.Engine)
	}
	return nil
}

// writeHTML composes the card and writes its markup.
func writeHTML(gen cardGenerator, fields tweetcard.Fields, f *renderFlags, env *Environment) error {
	doc, err := gen.Compose(fields)
	if err != nil {
		return err
	}

	path := f.output.path
	if path == "" {
		path = strings.TrimSuffix(tweetcard.Filename(env.Now()), ".png") + ".html"
	}
	if err := fileutil.WriteFileAtomic(path, []byte(doc.HTML), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", path)
	}
	return nil
}

// buildFields turns card flags into generator fields. Local image paths
// become data URIs; URLs and data URIs pass through.
func buildFields(cf cardFlags, env *Environment) (tweetcard.Fields, error) {
	body, err := readBody(cf, env)
	if err != nil {
		return tweetcard.Fields{}, err
	}

	avatar, err := imageRef(cf.avatar)
	if err != nil {
		return tweetcard.Fields{}, err
	}
	background, err := imageRef(cf.background)
	if err != nil {
		return tweetcard.Fields{}, err
	}

	fields := tweetcard.Fields{
		Name:         cf.name,
		Handle:       cf.handle,
		Body:         body,
		ProfileImage: avatar,
		Background:   background,
	}
	if cf.markdown {
		fields.Format = string(tweetcard.FormatMarkdown)
	}
	return fields, nil
}

// readBody returns --body, or the content of --body-file ("-" reads stdin).
func readBody(cf cardFlags, env *Environment) (string, error) {
	switch {
	case cf.bodyFile == "-":
		data, err := io.ReadAll(io.LimitReader(env.Stdin, maxBodyFileBytes))
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %w", ErrReadBody, err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	case cf.bodyFile != "":
		data, err := fileutil.ReadFileLimited(cf.bodyFile, maxBodyFileBytes)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrReadBody, cf.bodyFile, err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	case strings.TrimSpace(cf.body) != "":
		return cf.body, nil
	}
	return "", ErrNoBody
}

// imageRef converts a local path to a data URI. Empty stays empty, and
// URL-like references are left to request validation.
func imageRef(ref string) (string, error) {
	if ref == "" || fileutil.IsURL(ref) || strings.HasPrefix(ref, "data:") || imagefetch.IsSupportedRef(ref) {
		return ref, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadImage, err)
	}
	uri, err := imagefetch.FileToDataURI(ref, imagefetch.DefaultMaxBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrReadImage, ref, err)
	}
	return uri, nil
}
