package vulkan

import (
	"fmt"

	"firestige.xyz/vkreplay/internal/core"
)

// EntryPoint is a Vulkan command known to the replayer.
type EntryPoint struct {
	ID   core.PacketID
	Name string
	// Present marks the command that ends a frame.
	Present bool
}

var entryPointNames = []string{
	"vkCreateInstance",
	"vkDestroyInstance",
	"vkEnumeratePhysicalDevices",
	"vkCreateDevice",
	"vkDestroyDevice",
	"vkGetDeviceQueue",
	"vkCreateSwapchainKHR",
	"vkAcquireNextImageKHR",
	"vkQueueSubmit",
	"vkQueueWaitIdle",
	"vkQueuePresentKHR",
	"vkBeginCommandBuffer",
	"vkEndCommandBuffer",
	"vkCmdDraw",
	"vkDeviceWaitIdle",
}

var (
	entryPoints  = make(map[core.PacketID]EntryPoint, len(entryPointNames))
	entryPointID = make(map[string]core.PacketID, len(entryPointNames))
)

func init() {
	for i, name := range entryPointNames {
		id := core.PacketBeginAPI + core.PacketID(i)
		entryPoints[id] = EntryPoint{ID: id, Name: name, Present: name == "vkQueuePresentKHR"}
		entryPointID[name] = id
	}
}

// LookupEntryPoint returns the entrypoint encoded by a packet id.
func LookupEntryPoint(id core.PacketID) (EntryPoint, error) {
	ep, ok := entryPoints[id]
	if !ok {
		return EntryPoint{}, fmt.Errorf("%w: packet id %d", core.ErrUnknownEntryPoint, id)
	}
	return ep, nil
}

// PacketID returns the packet id of a named entrypoint.
func PacketID(name string) (core.PacketID, bool) {
	id, ok := entryPointID[name]
	return id, ok
}

// Result mirrors VkResult.
type Result int32

const (
	Success             Result = 0
	NotReady            Result = 1
	Timeout             Result = 2
	Incomplete          Result = 5
	ErrorOutOfHostMem   Result = -1
	ErrorOutOfDeviceMem Result = -2
	ErrorInitFailed     Result = -3
	ErrorDeviceLost     Result = -4
	SuboptimalKHR       Result = 1000001003
	ErrorOutOfDateKHR   Result = -1000001004
)

var resultNames = map[Result]string{
	Success:             "VK_SUCCESS",
	NotReady:            "VK_NOT_READY",
	Timeout:             "VK_TIMEOUT",
	Incomplete:          "VK_INCOMPLETE",
	ErrorOutOfHostMem:   "VK_ERROR_OUT_OF_HOST_MEMORY",
	ErrorOutOfDeviceMem: "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	ErrorInitFailed:     "VK_ERROR_INITIALIZATION_FAILED",
	ErrorDeviceLost:     "VK_ERROR_DEVICE_LOST",
	SuboptimalKHR:       "VK_SUBOPTIMAL_KHR",
	ErrorOutOfDateKHR:   "VK_ERROR_OUT_OF_DATE_KHR",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("VkResult(%d)", int32(r))
}
