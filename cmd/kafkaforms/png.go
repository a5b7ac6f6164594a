package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-kafkaforms/pkg/pngcodec"
)

func newPNGCmd(_ *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "png",
		Short: "Pack bytes into PNG images and back",
	}
	cmd.AddCommand(newPNGEncodeCmd(), newPNGDecodeCmd())
	return cmd
}

func newPNGEncodeCmd() *cobra.Command {
	var (
		output        string
		width, height int
		useGZIP       bool
	)
	cmd := &cobra.Command{
		Use:   "encode <file|->",
		Short: "Encode a file into a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			opts := pngcodec.Options{GZIP: useGZIP}
			if cmd.Flags().Changed("width") {
				opts.Width = &width
			}
			if cmd.Flags().Changed("height") {
				opts.Height = &height
			}
			img, err := pngcodec.Encode(data, opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, img)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	f.IntVar(&width, "width", 0, "image width in pixels")
	f.IntVar(&height, "height", 0, "image height in pixels")
	f.BoolVar(&useGZIP, "gzip", true, "gzip the payload before packing")
	return cmd
}

func newPNGDecodeCmd() *cobra.Command {
	var (
		output  string
		useGZIP bool
	)
	cmd := &cobra.Command{
		Use:   "decode <file|->",
		Short: "Decode the bytes packed into a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			data, err := pngcodec.Decode(img, useGZIP)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&useGZIP, "gzip", true, "payload was gzipped before packing")
	return cmd
}
