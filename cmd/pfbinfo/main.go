// Command pfbinfo inspects ParFlow binary grid files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hydroframe/go-native-pfb/pfb"
	"github.com/hydroframe/go-native-pfb/pfb/api"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pfbinfo",
		Short:         "Inspect ParFlow binary grid files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("vertical-first", true, "z axis leads full and flat results")
	root.PersistentFlags().String("outer-axis", "z", "axis for stacking multiple files (z or time)")

	v := viper.New()
	v.SetEnvPrefix("PFB")
	v.AutomaticEnv()
	_ = v.BindPFlag("vertical-first", root.PersistentFlags().Lookup("vertical-first"))
	_ = v.BindPFlag("outer-axis", root.PersistentFlags().Lookup("outer-axis"))

	root.AddCommand(headerCmd(v), statCmd(v), distCmd(v))
	return root
}

func newService(v *viper.Viper) *pfb.DataService {
	return pfb.NewDataService(
		pfb.WithVerticalFirst(v.GetBool("vertical-first")),
		pfb.WithDefaultOuterAxis(api.OuterAxis(v.GetString("outer-axis"))),
	)
}

func headerCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "header <file>",
		Short: "Print the grid header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService(v)
			hdr := api.NewHeaderMap()
			if _, err := svc.ReadArray(args[0], hdr, api.ModeFull); err != nil {
				return err
			}
			for _, k := range api.HeaderKeys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %v\n", k, hdr[k])
			}
			return nil
		},
	}
}

func statCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <file>...",
		Short: "Print shape and value statistics, stacking multiple files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService(v)
			var arr *api.Array
			var err error
			if len(args) == 1 {
				arr, err = svc.ReadArray(args[0], nil, api.ModeFull)
			} else {
				arr, err = svc.ReadStack(args, nil, api.ModeFull, "")
			}
			if err != nil {
				return err
			}

			min, max, sum := arr.Data[0], arr.Data[0], 0.0
			for _, x := range arr.Data {
				if x < min {
					min = x
				}
				if x > max {
					max = x
				}
				sum += x
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend %s\n", svc.ImplementationType())
			fmt.Fprintf(out, "dims    %v\n", arr.Dims)
			fmt.Fprintf(out, "shape   %v\n", arr.Shape)
			fmt.Fprintf(out, "min     %g\n", min)
			fmt.Fprintf(out, "max     %g\n", max)
			fmt.Fprintf(out, "mean    %g\n", sum/float64(arr.Len()))
			return nil
		},
	}
}

func distCmd(v *viper.Viper) *cobra.Command {
	var p, q, r int
	cmd := &cobra.Command{
		Use:   "dist <file>",
		Short: "Rewrite a file as one single-subgrid file per partition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService(v)
			h, err := svc.ReadHeader(args[0])
			if err != nil {
				return err
			}
			arr, err := svc.ReadArray(args[0], nil, api.ModeFull)
			if err != nil {
				return err
			}
			h.P, h.Q, h.R = p, q, r
			h.NumSubgrids = p * q * r
			paths, err := svc.WriteDistributed(args[0], h, arr, api.ModeFull)
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&p, "p", 1, "partitions along x")
	cmd.Flags().IntVar(&q, "q", 1, "partitions along y")
	cmd.Flags().IntVar(&r, "r", 1, "partitions along z")
	return cmd
}
