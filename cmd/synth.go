package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/trace"
	"firestige.xyz/vkreplay/plugins/replayer/vulkan"
)

func newSynthCmd() *cobra.Command {
	var frames, draws int

	cmd := &cobra.Command{
		Use:   "synth <out>",
		Short: "Write a small synthetic Vulkan trace",
		Long: `Write a synthetic Vulkan trace with a fixed setup sequence, the requested
number of frames and a teardown sequence. Useful to try replay options without
a real capture.

Examples:
  vkreplay synth demo.vktrace --frames 100 --draws 8
  vkreplay -t demo.vktrace -l 3 -lsf 10 -lef 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames < 0 || draws < 0 {
				return startupError(fmt.Errorf("%w: frames and draws must not be negative", core.ErrConfigInvalid))
			}
			n, err := runSynth(args[0], frames, draws)
			if err != nil {
				return startupError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d packets to %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 10, "number of presented frames")
	cmd.Flags().IntVar(&draws, "draws", 3, "draw calls per frame")
	return cmd
}

func runSynth(path string, frames, draws int) (int, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(expanded)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", expanded, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	n, err := writeSynthTrace(bw, frames, draws)
	if err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to write %s: %w", expanded, err)
	}
	return n, f.Close()
}

// writeSynthTrace writes a Vulkan-only trace and returns its packet count.
func writeSynthTrace(out io.Writer, frames, draws int) (int, error) {
	w, err := trace.NewWriter(out, trace.NewFileHeader(core.TracerVulkan))
	if err != nil {
		return 0, err
	}

	n := 0
	call := func(name string) error {
		id, ok := vulkan.PacketID(name)
		if !ok {
			return fmt.Errorf("%w: %s", core.ErrUnknownEntryPoint, name)
		}
		n++
		hdr := core.Header{TracerID: core.TracerVulkan, PacketID: id}
		return w.WritePacket(hdr, vulkan.EncodeCall(vulkan.Success, nil))
	}
	calls := func(names ...string) error {
		for _, name := range names {
			if err := call(name); err != nil {
				return err
			}
		}
		return nil
	}

	n++
	if err := w.WriteMessage(core.MessageInfo, fmt.Sprintf("synthetic trace: %d frames", frames)); err != nil {
		return n, err
	}
	err = calls("vkCreateInstance", "vkEnumeratePhysicalDevices", "vkCreateDevice",
		"vkGetDeviceQueue", "vkCreateSwapchainKHR")
	if err != nil {
		return n, err
	}

	for i := 0; i < frames; i++ {
		n++
		if err := w.WriteMarker(core.PacketAPIBoundary); err != nil {
			return n, err
		}
		if err := calls("vkAcquireNextImageKHR", "vkBeginCommandBuffer"); err != nil {
			return n, err
		}
		for d := 0; d < draws; d++ {
			if err := call("vkCmdDraw"); err != nil {
				return n, err
			}
		}
		if err := calls("vkEndCommandBuffer", "vkQueueSubmit", "vkQueuePresentKHR"); err != nil {
			return n, err
		}
	}

	if err := calls("vkDeviceWaitIdle", "vkDestroyDevice", "vkDestroyInstance"); err != nil {
		return n, err
	}
	n++
	return n, w.WriteMarker(core.PacketTerminateProcess)
}
