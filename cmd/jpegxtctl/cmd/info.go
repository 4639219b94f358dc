package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/marker"
	"github.com/spf13/cobra"
)

// NewInfoCmd walks a codestream's marker segments and prints a summary,
// the inspection counterpart to the teacher's analyze command.
func NewInfoCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "print marker segments found in a JPEG XT codestream",
		Long:  "print marker segments found in a JPEG XT codestream",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}
			f, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer f.Close()
			return runInfo(f)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "codestream path to inspect")
	return cmd
}

func runInfo(f *os.File) error {
	r := bitio.NewReader(f)
	seg, err := marker.ReadOne(r)
	if err != nil {
		return err
	}
	if seg.Code != marker.SOI {
		return fmt.Errorf("not a JPEG XT codestream: expected SOI, got 0xFF%02X", byte(seg.Code))
	}
	fmt.Println("SOI")

	for {
		seg, err := marker.ReadOne(r)
		if err != nil {
			return err
		}
		fmt.Printf("0xFF%02X  %d bytes\n", byte(seg.Code), len(seg.Payload))
		switch seg.Code {
		case marker.SOF0, marker.SOF1, marker.SOF2, marker.SOF3, marker.SOF9, marker.SOF10, marker.SOF11:
			fh, err := marker.ParseFrameHeader(seg.Code, seg.Payload)
			if err == nil {
				fmt.Printf("  frame %dx%d, %d components, %d-bit\n", fh.Width, fh.Height, len(fh.Components), fh.Precision)
			}
		case marker.SOS:
			sh, err := marker.ParseScanHeader(seg.Payload)
			if err == nil {
				fmt.Printf("  scan over %d components, Ss=%d Se=%d Ah=%d Al=%d\n", len(sh.Components), sh.Ss, sh.Se, sh.Ah, sh.Al)
			}
		case marker.DRI:
			ri, err := marker.ParseRestartInterval(seg.Payload)
			if err == nil {
				fmt.Printf("  restart interval %d\n", ri)
			}
		case marker.EOI:
			return nil
		}
	}
}
