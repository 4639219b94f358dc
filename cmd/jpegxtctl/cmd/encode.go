package cmd

import (
	"context"
	goimage "image"
	_ "image/png"
	"os"

	"github.com/jpfielding/jpegxt/pkg/jpegxt"
	"github.com/spf13/cobra"
)

// NewEncodeCmd reads a PNG (via Go's stdlib image package with the PNG
// decoder registered; that is its only pixel source, never a PNM/PFM
// reader) and writes a baseline-profile JPEG XT codestream of its luma
// plane.
func NewEncodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "encode a PNG's luma plane to a JPEG XT codestream",
		Long:  "encode a PNG's luma plane to a JPEG XT codestream",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")
			quality, _ := cmd.Flags().GetInt("quality")

			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()
			img, _, err := goimage.Decode(f)
			if err != nil {
				return err
			}

			bounds := img.Bounds()
			plane := &jpegxt.Plane{Width: bounds.Dx(), Height: bounds.Dy(), Samples: make([]int32, bounds.Dx()*bounds.Dy())}
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					r, g, b, _ := img.At(x, y).RGBA()
					luma := (19595*int32(r>>8) + 38470*int32(g>>8) + 7471*int32(b>>8)) >> 16
					plane.Samples[(y-bounds.Min.Y)*plane.Width+(x-bounds.Min.X)] = luma
				}
			}

			w, err := os.Create(out)
			if err != nil {
				return err
			}
			defer w.Close()

			cfg := jpegxt.FromTagItems(nil)
			cfg.Quality = quality
			return jpegxt.EncodeGray(w, plane, cfg)
		},
	}
	pf := cmd.Flags()
	pf.StringP("in", "i", "", "source PNG path")
	pf.StringP("out", "o", "", "destination codestream path")
	pf.IntP("quality", "q", 75, "quality 1-100")
	return cmd
}
