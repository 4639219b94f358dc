package cmd

import (
	"context"
	goimage "image"
	"image/color"
	"image/png"
	"os"

	"github.com/jpfielding/jpegxt/pkg/jpegxt"
	"github.com/spf13/cobra"
)

// NewDecodeCmd is EncodeCmd's inverse: it reads a JPEG XT codestream and
// writes the reconstructed luma plane as a grayscale PNG.
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "decode a JPEG XT codestream to a grayscale PNG",
		Long:  "decode a JPEG XT codestream to a grayscale PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")

			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()

			plane, err := jpegxt.DecodeGray(f)
			if err != nil {
				return err
			}

			img := goimage.NewGray(goimage.Rect(0, 0, plane.Width, plane.Height))
			for y := 0; y < plane.Height; y++ {
				for x := 0; x < plane.Width; x++ {
					v := plane.Samples[y*plane.Width+x]
					img.SetGray(x, y, color.Gray{Y: clampByte(v)})
				}
			}

			w, err := os.Create(out)
			if err != nil {
				return err
			}
			defer w.Close()
			return png.Encode(w, img)
		},
	}
	pf := cmd.Flags()
	pf.StringP("in", "i", "", "source codestream path")
	pf.StringP("out", "o", "", "destination PNG path")
	return cmd
}

func clampByte(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
