package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/source/file"
	"firestige.xyz/vkreplay/pkg/replayer"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <trace>",
		Short: "Show trace header and packet counts",
		Long: `Read a trace file without replaying it and print its header, the tracers it
was captured with and how many packets of each kind it holds.

Examples:
  vkreplay info app.vktrace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runInfo(args[0], cmd.OutOrStdout()); err != nil {
				return startupError(err)
			}
			return nil
		},
	}
}

func runInfo(path string, out io.Writer) error {
	src, err := file.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	h := src.Header()
	fmt.Fprintf(out, "File:     %s\n", src.Path())
	fmt.Fprintf(out, "Version:  %d\n", h.Version)
	fmt.Fprintf(out, "UUID:     %s\n", hex.EncodeToString(h.UUID[:]))
	fmt.Fprintf(out, "Tracers:\n")
	for i := 0; i < int(h.TracerCount) && i < core.MaxTracerIDs; i++ {
		t := h.Tracers[i]
		bits := 32
		if t.Is64Bit {
			bits = 64
		}
		replays := "no"
		if info, ok := replayer.Tracer(t.ID); ok && info.NeedsReplayer {
			replays = "yes"
		}
		fmt.Fprintf(out, "  %-10s id=%-2d %d-bit replayed=%s\n", t.ID, uint8(t.ID), bits, replays)
	}

	st, err := file.Scan(src)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Packets:  %s (%s)\n", humanize.Comma(int64(st.Packets)), humanize.Bytes(uint64(st.Bytes)))
	fmt.Fprintf(out, "Messages: %d\n", st.Messages)

	markers := make([]core.Marker, 0, len(st.Markers))
	for m := range st.Markers {
		markers = append(markers, m)
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i] < markers[j] })
	for _, m := range markers {
		fmt.Fprintf(out, "  %-18s %d\n", m, st.Markers[m])
	}

	tracers := make([]core.TracerID, 0, len(st.APICalls))
	for id := range st.APICalls {
		tracers = append(tracers, id)
	}
	sort.Slice(tracers, func(i, j int) bool { return tracers[i] < tracers[j] })
	fmt.Fprintf(out, "API calls:\n")
	for _, id := range tracers {
		fmt.Fprintf(out, "  %-10s %s\n", id, humanize.Comma(int64(st.APICalls[id])))
	}
	return nil
}
