package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/textgen/internal/tokenizer"
)

func encodeCmd() *cli.Command {
	var vf vocabFlags
	return &cli.Command{
		Name:      "encode",
		Usage:     "Map tokens to ids",
		ArgsUsage: "TOKEN...",
		Flags:     vf.flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			v, err := vf.load()
			if err != nil {
				return err
			}
			ids, err := tokenizer.New(v).Encode(cmd.Args().Slice())
			if err != nil {
				return err
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = strconv.Itoa(id)
			}
			_, err = fmt.Fprintln(outWriter(cmd), strings.Join(parts, " "))
			return err
		},
	}
}

func decodeCmd() *cli.Command {
	var vf vocabFlags
	return &cli.Command{
		Name:      "decode",
		Usage:     "Map ids back to tokens",
		ArgsUsage: "ID...",
		Flags:     vf.flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			v, err := vf.load()
			if err != nil {
				return err
			}
			ids, err := parseIDs(cmd.Args().Slice())
			if err != nil {
				return err
			}
			text, err := tokenizer.New(v).DecodeString(ids)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(outWriter(cmd), text)
			return err
		},
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		for _, f := range strings.FieldsFunc(a, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q: %w", f, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
