package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tweetcard <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render a tweet card to PNG")
	fmt.Fprintln(w, "  serve      Run the HTTP API")
	fmt.Fprintln(w, "  doctor     Check Chrome and the environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tweetcard help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tweetcard render --name <s> --handle <s> (--body <s> | --body-file <path>) [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a 1500x1500 tweet card.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Card:")
	fmt.Fprintln(w, "      --name <s>            Display name (max 100 chars)")
	fmt.Fprintln(w, "      --handle <s>          Handle, with or without @ (max 50 chars)")
	fmt.Fprintln(w, "      --body <s>            Tweet text (max 500 chars)")
	fmt.Fprintln(w, "      --body-file <path>    Read tweet text from a file (- = stdin)")
	fmt.Fprintln(w, "      --markdown            Render the body as markdown")
	fmt.Fprintln(w, "      --avatar <path|url>   Avatar image")
	fmt.Fprintln(w, "      --background <path|url>")
	fmt.Fprintln(w, "                            Background image (default: brand color)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "  -e, --engine <s>          Rasterizer: chrome, canvas (default chrome)")
	fmt.Fprintln(w, "      --scale <n>           Device scale factor 1-3 (chrome 3, canvas 1)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout (e.g., 30s, 1m)")
	fmt.Fprintln(w, "      --strict-assets       Fail when an image cannot be loaded")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox")
	fmt.Fprintln(w, "      --asset-path <dir>    Override templates/card.html and styles/card.css")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default tweet-quote-<ms>.png)")
	fmt.Fprintln(w, "      --html-only           Write the card HTML, skip rasterization")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tweetcard serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP API until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  POST /api/generate-tweet  Render a card (JSON in, PNG out)")
	fmt.Fprintln(w, "  GET  /api/generate-tweet  Status")
	fmt.Fprintln(w, "  GET  /health              Status")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :3000)")
	fmt.Fprintln(w, "  -e, --engine <s>          Rasterizer: chrome, canvas")
	fmt.Fprintln(w, "      --scale <n>           Device scale factor 1-3")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout")
	fmt.Fprintln(w, "      --strict-assets       Fail when an image cannot be loaded")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox")
	fmt.Fprintln(w, "      --asset-path <dir>    Template override directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only log errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logs and gin debug mode")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tweetcard doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome availability, sandbox settings and the environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: tweetcard version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: tweetcard help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
