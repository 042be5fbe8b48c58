//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"
	"strings"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/network"
	"github.com/spf13/cobra"
)

func servicesCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "services",
		Short: "List network services in service order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			var services []network.Service
			if all {
				if services, err = s.Services(); err != nil {
					return err
				}
			} else {
				services = s.ServiceOrder()
			}
			defer cf.ReleaseSlice(services)

			var primary string
			if svc, ok := s.GlobalService(); ok {
				primary = svc.ID()
				svc.Release()
			}

			rows := make([][]string, 0, len(services))
			for _, svc := range services {
				name := svc.Name()
				if svc.ID() == primary {
					name = Bold(name) + " " + AccentStyle.Render("*")
				}
				bsd, typ := "-", "-"
				if iface, ok := svc.Interface(); ok {
					bsd = orNone(iface.BSDName())
					typ = iface.TypeName()
					iface.Release()
				}
				rows = append(rows, []string{name, svc.ID(), bsd, typ, Bool(svc.Enabled())})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"NAME", "ID", "INTERFACE", "TYPE", "ENABLED"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include services outside the current set")
	return cmd
}

func interfacesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces",
		Short: "List network-capable interfaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			ifaces, err := s.Interfaces()
			if err != nil {
				return err
			}
			defer cf.ReleaseSlice(ifaces)

			rows := make([][]string, 0, len(ifaces))
			for _, iface := range ifaces {
				mtu := Muted("-")
				if m, ok := iface.MTU(); ok {
					mtu = m.String()
				}
				rows = append(rows, []string{
					orNone(iface.BSDName()),
					iface.Type().String(),
					orNone(iface.DisplayName()),
					orNone(iface.HardwareAddress()),
					mtu,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"NAME", "TYPE", "DISPLAY NAME", "ADDRESS", "MTU"}, rows))
			return nil
		},
	}
}

func setsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sets",
		Short: "List network sets (locations)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			sets, err := network.ListSets(s.Preferences())
			if err != nil {
				return err
			}
			defer cf.ReleaseSlice(sets)

			var current string
			if set, ok := network.CurrentSet(s.Preferences()); ok {
				current = set.ID()
				set.Release()
			}

			rows := make([][]string, 0, len(sets))
			for _, set := range sets {
				services := set.Services()
				names := make([]string, len(services))
				for i, svc := range services {
					names[i] = svc.Name()
				}
				cf.ReleaseSlice(services)
				rows = append(rows, []string{set.Name(), set.ID(), Bool(set.ID() == current), strings.Join(names, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"NAME", "ID", "CURRENT", "SERVICES"}, rows))
			return nil
		},
	}
}
