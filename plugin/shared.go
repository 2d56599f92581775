// Package plugin lets an external program act as a scope.DirectiveSource.
//
// The host starts the program with Launch; the program answers through
// Serve. Both sides dispense a single plugin, PluginName, over go-plugin's
// gRPC protocol after agreeing on Handshake.

package plugin

import (
	"github.com/hashicorp/go-plugin"
)

// Directive plugins and lintscope check each other with these values before
// any directive is exchanged. ProtocolVersion changes whenever the
// DirectiveSource service or its message layout does.
const (
	ProtocolVersion  = 1
	MagicCookieKey   = "LINTSCOPE_PLUGIN_MAGIC_COOKIE"
	MagicCookieValue = "lintscope-plugin-v1"
)

// Handshake is shared by Launch and Serve. A plugin binary run by hand
// lacks the cookie in its environment and refuses to serve.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  ProtocolVersion,
	MagicCookieKey:   MagicCookieKey,
	MagicCookieValue: MagicCookieValue,
}

// PluginName is the key under which the directive source is dispensed.
const PluginName = "directives"

// PluginMap holds the one plugin a directive program exposes.
var PluginMap = map[string]plugin.Plugin{
	PluginName: &DirectiveSourcePlugin{},
}
