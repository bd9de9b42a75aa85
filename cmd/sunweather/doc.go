// Package main hosts the sunweather CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, wires the archive
// client, grid pipeline, and ffmpeg encoder together, and surfaces a few
// inspection commands (bands, deps, frames) alongside configuration
// scaffolding. Subcommands stay thin; the rendering pipeline itself lives in
// the internal packages.
package main
