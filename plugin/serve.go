// Package plugin provides the entry point for lintscope directive plugins.
//
// A plugin is an external program that tells lintscope which directive
// file governs a directory and what it contains, for example by reading
// directives from a build system. The Serve function is called from main()
// and handles all communication with the lintscope host process using gRPC
// via HashiCorp's go-plugin library.
//
// Example plugin main.go:
//
//	package main
//
//	import (
//	    "github.com/jokarl/lintscope/plugin"
//	)
//
//	func main() {
//	    plugin.Serve(&plugin.ServeOpts{
//	        Name:   "gradle",
//	        Source: &GradleSource{},
//	    })
//	}
package plugin

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/jokarl/lintscope/scope"
)

// ServeOpts contains options for serving the plugin.
type ServeOpts struct {
	// Name identifies the plugin in messages.
	Name string
	// Source is the plugin's directive source implementation.
	Source scope.DirectiveSource
}

// Serve starts the plugin server.
//
// The function blocks until the host disconnects. When invoked directly
// (outside of lintscope), the plugin will print a message and exit.
//
// Communication uses gRPC with HashiCorp's go-plugin library, which provides:
// - Magic cookie handshake to prevent direct execution
// - Protocol versioning for compatibility
func Serve(opts *ServeOpts) {
	if opts == nil || opts.Source == nil {
		// Nothing to serve
		return
	}

	// Check if we're being invoked by lintscope (via magic cookie)
	// If not, print a helpful message and exit
	if os.Getenv(MagicCookieKey) != MagicCookieValue {
		printDirectInvocationMessage(opts.Name)
		return
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "plugin",
		Level:  hclog.Warn,
		Output: os.Stderr,
	})

	pluginMap := map[string]plugin.Plugin{
		PluginName: &DirectiveSourcePlugin{Impl: opts.Source},
	}

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         pluginMap,
		GRPCServer:      plugin.DefaultGRPCServer,
		Logger:          logger,
	})
}

// printDirectInvocationMessage prints a helpful message when the plugin
// is invoked directly instead of via lintscope.
func printDirectInvocationMessage(name string) {
	if name == "" {
		name = "unnamed"
	}
	os.Stderr.WriteString("This is a lintscope directive plugin.\n\n")
	os.Stderr.WriteString("Plugin: " + name + "\n")
	os.Stderr.WriteString("\nTo use this plugin, pass it to lintscope:\n")
	os.Stderr.WriteString("  lintscope severity --source-plugin <path> [options]\n")
}
