package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"staffhub/pkg/buildinfo"
)

func newBuildInfoCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build-info",
		Short: "Записать метаданные сборки в JSON-файл",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.From(cfg, time.Now())
			if err := buildinfo.Write(out, info); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Версия %s, сборка %s -> %s\n", info.Version, info.BuildTime.Format(time.RFC3339), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "meta.json", "путь к выходному файлу")
	return cmd
}
