package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newRPCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rpc <function> [args...]",
		Short: "Вызвать функцию базы данных и вывести строки результата",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := connectData(cmd.Context())
			if err != nil {
				return err
			}
			defer data.Close()

			params := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				params = append(params, a)
			}
			rows, err := data.RPC(cmd.Context(), args[0], params...)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, row := range rows {
				if err := enc.Encode(row); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
