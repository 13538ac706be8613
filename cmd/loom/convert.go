package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/loom-ml/loom/tensor"
)

func convertCmd() *cli.Command {
	var (
		layoutName string
		dtypeName  string
	)
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert the layout or dtype of a .loom tensor file",
		ArgsUsage: "<in.loom> <out.loom>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "layout",
				Usage:       "target layout: row-major or tile",
				Destination: &layoutName,
			},
			&cli.StringFlag{
				Name:        "dtype",
				Usage:       "target dtype: bfloat16 or float32",
				Destination: &dtypeName,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 2 {
				return fmt.Errorf("usage: loom convert [--layout L] [--dtype D] <in.loom> <out.loom>")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := setupLogger(cfg)

			in, out := cmd.Args().Get(0), cmd.Args().Get(1)
			t, err := tensor.Load(in)
			if err != nil {
				return err
			}

			if dtypeName != "" && dtypeName != t.DType().String() {
				t, err = convertDType(t, dtypeName)
				if err != nil {
					return err
				}
			}

			if layoutName != "" {
				layout, err := parseLayout(layoutName)
				if err != nil {
					return err
				}
				t, _, err = tensor.ToLayout(t, layout)
				if err != nil {
					return err
				}
			}

			if err := tensor.Save(out, t); err != nil {
				return err
			}
			log.Info("converted", "in", in, "out", out, "dtype", t.DType().String(), "layout", t.Layout().String())
			return nil
		},
	}
}

// convertDType rebuilds the tensor in the requested dtype through the
// host-array boundary. Only the float formats interconvert.
func convertDType(t *tensor.Tensor, name string) (*tensor.Tensor, error) {
	var dtype tensor.DataType
	switch name {
	case "bfloat16":
		dtype = tensor.BFloat16
	case "float32":
		dtype = tensor.Float32
	default:
		return nil, fmt.Errorf("cannot convert to dtype %q", name)
	}

	data, dims, err := tensor.ToSlice[float32](t)
	if err != nil {
		return nil, err
	}
	return tensor.FromSliceAs(data, dims, dtype)
}

func parseLayout(name string) (tensor.Layout, error) {
	switch name {
	case "row-major":
		return tensor.RowMajor, nil
	case "tile":
		return tensor.Tile, nil
	default:
		return 0, fmt.Errorf("unknown layout %q", name)
	}
}
