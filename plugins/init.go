// Package plugins registers all built-in replayers.
package plugins

import (
	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/pkg/replayer"
	"firestige.xyz/vkreplay/plugins/replayer/vulkan"
)

func init() {
	replayer.RegisterFactory(core.TracerVulkan, vulkan.Factory)

	// gl-fps packets carry frame timing only and are never replayed.
}
