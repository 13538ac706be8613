package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/loom-ml/loom/internal/tensorfile"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the metadata of a .loom tensor file",
		ArgsUsage: "<file.loom>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("usage: loom inspect <file.loom>")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogger(cfg)

			path := cmd.Args().First()
			header, err := tensorfile.Inspect(path)
			if err != nil {
				return err
			}

			fmt.Printf("File:    %s\n", path)
			fmt.Printf("dtype:   %s\n", header.DType)
			fmt.Printf("layout:  %s\n", header.Layout)
			fmt.Printf("dims:    %v\n", header.Dims)
			fmt.Printf("padded:  %v\n", header.Padded)
			fmt.Printf("bytes:   %d\n", header.DataSize)
			return nil
		},
	}
}
